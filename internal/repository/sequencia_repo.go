package repository

import (
	"context"

	"gorm.io/gorm"
)

type SequenciaRepository interface {
	// Proximo bumps and returns the ordinal for (prefixo, ano). Must run
	// inside the creation transaction: the upsert row lock serializes
	// concurrent creators sharing the prefix and year.
	Proximo(ctx context.Context, tx *gorm.DB, prefixo string, ano int) (int, error)
}

type sequenciaRepo struct{ db *gorm.DB }

func NewSequenciaRepository(db *gorm.DB) SequenciaRepository { return &sequenciaRepo{db: db} }

func (r *sequenciaRepo) Proximo(ctx context.Context, tx *gorm.DB, prefixo string, ano int) (int, error) {
	if tx == nil {
		tx = r.db
	}
	var ultimo int
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO proposta_sequencias (prefixo, ano, ultimo, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (prefixo, ano)
		DO UPDATE SET ultimo = proposta_sequencias.ultimo + 1, updated_at = NOW()
		RETURNING ultimo`, prefixo, ano).Scan(&ultimo).Error
	return ultimo, err
}
