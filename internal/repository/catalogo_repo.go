package repository

import (
	"context"

	"propostas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogoReader resolves catalog ids. Lookups ignore the ativo flag: an
// entry deactivated after the client loaded the wizard still resolves.
// Missing rows return gorm.ErrRecordNotFound.
type CatalogoReader interface {
	FindTipoGas(ctx context.Context, id int64) (*model.TipoGas, error)
	FindCapacidade(ctx context.Context, id int64) (*model.Capacidade, error)
	FindUnidadeMedida(ctx context.Context, id int64) (*model.UnidadeMedida, error)
	FindCondicaoPagamento(ctx context.Context, id int64) (*model.CondicaoPagamento, error)
}

type CatalogoRepository interface {
	CatalogoReader

	// Listings return active entries only, ordered for display.
	ListTiposGas(ctx context.Context, tipo model.TipoProposta) ([]model.TipoGas, error)
	ListCapacidades(ctx context.Context) ([]model.Capacidade, error)
	ListUnidadesMedida(ctx context.Context) ([]model.UnidadeMedida, error)
	ListCondicoesPagamento(ctx context.Context) ([]model.CondicaoPagamento, error)

	// Seed inserts the given rows, skipping those whose natural key already exists.
	Seed(ctx context.Context, rows any) error
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) FindTipoGas(ctx context.Context, id int64) (*model.TipoGas, error) {
	var g model.TipoGas
	err := r.db.WithContext(ctx).First(&g, id).Error
	return &g, err
}

func (r *catalogoRepo) FindCapacidade(ctx context.Context, id int64) (*model.Capacidade, error) {
	var c model.Capacidade
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *catalogoRepo) FindUnidadeMedida(ctx context.Context, id int64) (*model.UnidadeMedida, error) {
	var u model.UnidadeMedida
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *catalogoRepo) FindCondicaoPagamento(ctx context.Context, id int64) (*model.CondicaoPagamento, error) {
	var c model.CondicaoPagamento
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *catalogoRepo) ListTiposGas(ctx context.Context, tipo model.TipoProposta) ([]model.TipoGas, error) {
	var out []model.TipoGas
	q := r.db.WithContext(ctx).Where("ativo = true")
	if tipo != "" {
		q = q.Where("tipo IN ?", []string{string(tipo), "ambos"})
	}
	err := q.Order("ordem, nome").Find(&out).Error
	return out, err
}

func (r *catalogoRepo) ListCapacidades(ctx context.Context) ([]model.Capacidade, error) {
	var out []model.Capacidade
	err := r.db.WithContext(ctx).Where("ativo = true").Order("ordem, tamanho").Find(&out).Error
	return out, err
}

func (r *catalogoRepo) ListUnidadesMedida(ctx context.Context) ([]model.UnidadeMedida, error) {
	var out []model.UnidadeMedida
	err := r.db.WithContext(ctx).Where("ativo = true").Order("ordem, nome").Find(&out).Error
	return out, err
}

func (r *catalogoRepo) ListCondicoesPagamento(ctx context.Context) ([]model.CondicaoPagamento, error) {
	var out []model.CondicaoPagamento
	err := r.db.WithContext(ctx).Where("ativo = true").Order("ordem, descricao").Find(&out).Error
	return out, err
}

func (r *catalogoRepo) Seed(ctx context.Context, rows any) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}
