package infra

import (
	"fmt"

	"propostas/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and brings the
// schema up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table, then applies the DDL GORM
// cannot express. Safe to re-run.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Unidade{},
		&model.Usuario{},
		&model.TipoGas{},
		&model.Capacidade{},
		&model.UnidadeMedida{},
		&model.CondicaoPagamento{},
		&model.Proposta{},
		&model.PropostaItem{},
		&model.PropostaSequencia{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches adds CHECK constraints for the enum-like columns.
// Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	checks := []struct{ table, name, expr string }{
		{"propostas", "chk_propostas_tipo", "tipo IN ('cilindro','liquido')"},
		{"propostas", "chk_propostas_status", "status IN ('rascunho','gerada','enviada')"},
		{"propostas", "chk_propostas_locacao_qtd", "locacao_quantidade IS NULL OR locacao_quantidade > 0"},
		{"proposta_itens", "chk_proposta_itens_valor", "valor_unitario >= 0"},
		{"users", "chk_users_role", "role IN ('superadmin','unidade')"},
		{"tipos_gas", "chk_tipos_gas_tipo", "tipo IN ('cilindro','liquido','ambos')"},
		{"proposta_sequencias", "chk_proposta_sequencias_ultimo", "ultimo >= 0"},
	}
	for _, c := range checks {
		sql := fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
    ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
  END IF;
END $$`, c.name, c.table, c.name, c.expr)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", c.name, err)
		}
	}

	// Listing is always newest-first within a branch.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_propostas_unidade_created
		ON propostas (unidade_id, created_at DESC)`).Error; err != nil {
		return fmt.Errorf("patch idx_propostas_unidade_created: %w", err)
	}
	return nil
}
