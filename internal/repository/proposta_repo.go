package repository

import (
	"context"
	"strings"
	"time"

	"propostas/internal/dto"
	"propostas/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PropostaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Proposta) error
	CreateItem(ctx context.Context, tx *gorm.DB, it *model.PropostaItem) error
	UpdateTotais(ctx context.Context, tx *gorm.DB, id int64, subtotal, total decimal.Decimal, locacaoTotal decimal.NullDecimal) error
	FindByID(ctx context.Context, id int64) (*model.Proposta, error)
	// List filters by branch when unidadeID is non-nil.
	List(ctx context.Context, filter dto.PropostaFilter, unidadeID *int64) ([]model.Proposta, int64, error)
	Delete(ctx context.Context, id int64) error
	// MarcarEnviada moves a "gerada" proposal to "enviada". Returns the
	// number of rows changed; zero means the status was not "gerada".
	MarcarEnviada(ctx context.Context, id int64, para string, em time.Time) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type propostaRepo struct{ db *gorm.DB }

func NewPropostaRepository(db *gorm.DB) PropostaRepository { return &propostaRepo{db: db} }

func (r *propostaRepo) DB() *gorm.DB { return r.db }

func (r *propostaRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *propostaRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Proposta) error {
	// Items are inserted one by one by the service after enrichment.
	return r.conn(tx).WithContext(ctx).Omit("Itens").Create(p).Error
}

func (r *propostaRepo) CreateItem(ctx context.Context, tx *gorm.DB, it *model.PropostaItem) error {
	return r.conn(tx).WithContext(ctx).Create(it).Error
}

func (r *propostaRepo) UpdateTotais(ctx context.Context, tx *gorm.DB, id int64, subtotal, total decimal.Decimal, locacaoTotal decimal.NullDecimal) error {
	return r.conn(tx).WithContext(ctx).Model(&model.Proposta{}).Where("id = ?", id).Updates(map[string]any{
		"subtotal_itens":      subtotal,
		"valor_total":         total,
		"locacao_valor_total": locacaoTotal,
	}).Error
}

func (r *propostaRepo) FindByID(ctx context.Context, id int64) (*model.Proposta, error) {
	var p model.Proposta
	err := r.db.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("ordem, id") }).
		First(&p, id).Error
	return &p, err
}

func (r *propostaRepo) List(ctx context.Context, filter dto.PropostaFilter, unidadeID *int64) ([]model.Proposta, int64, error) {
	var out []model.Proposta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Proposta{})
	if unidadeID != nil {
		q = q.Where("unidade_id = ?", *unidadeID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Busca != "" {
		like := "%" + escaparLike(filter.Busca) + "%"
		q = q.Where(`(cliente_nome ILIKE ? ESCAPE '\' OR numero ILIKE ? ESCAPE '\')`, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(filter.Limit).Find(&out).Error
	return out, total, err
}

func (r *propostaRepo) Delete(ctx context.Context, id int64) error {
	// proposta_itens rows go with the header via ON DELETE CASCADE.
	return r.db.WithContext(ctx).Delete(&model.Proposta{}, id).Error
}

func (r *propostaRepo) MarcarEnviada(ctx context.Context, id int64, para string, em time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Proposta{}).
		Where("id = ? AND status = ?", id, model.StatusGerada).
		Updates(map[string]any{
			"status":       model.StatusEnviada,
			"enviada_em":   em,
			"enviada_para": para,
		})
	return res.RowsAffected, res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escaparLike makes user text match literally inside an ILIKE pattern.
func escaparLike(s string) string { return likeEscaper.Replace(s) }
