package repository

import (
	"context"

	"propostas/internal/model"

	"gorm.io/gorm"
)

type UnidadeRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Unidade, error)
	FindByNome(ctx context.Context, nome string) (*model.Unidade, error)
	ListAtivas(ctx context.Context) ([]model.Unidade, error)
	// Save inserts or updates by primary key (seed command).
	Save(ctx context.Context, u *model.Unidade) error
}

type unidadeRepo struct{ db *gorm.DB }

func NewUnidadeRepository(db *gorm.DB) UnidadeRepository { return &unidadeRepo{db: db} }

func (r *unidadeRepo) FindByID(ctx context.Context, id int64) (*model.Unidade, error) {
	var u model.Unidade
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *unidadeRepo) FindByNome(ctx context.Context, nome string) (*model.Unidade, error) {
	var u model.Unidade
	err := r.db.WithContext(ctx).Where("nome = ?", nome).First(&u).Error
	return &u, err
}

func (r *unidadeRepo) ListAtivas(ctx context.Context) ([]model.Unidade, error) {
	var out []model.Unidade
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome").Find(&out).Error
	return out, err
}

func (r *unidadeRepo) Save(ctx context.Context, u *model.Unidade) error {
	return r.db.WithContext(ctx).Save(u).Error
}
