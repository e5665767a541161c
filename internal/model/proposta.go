package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoProposta drives catalog filtering and the document layout.
type TipoProposta string

const (
	TipoCilindro TipoProposta = "cilindro"
	TipoLiquido  TipoProposta = "liquido"
)

func (t TipoProposta) Valido() bool {
	return t == TipoCilindro || t == TipoLiquido
}

// StatusProposta: "rascunho" → "gerada" → "enviada".
// Creation inserts straight into "gerada"; "rascunho" has no producer today.
type StatusProposta string

const (
	StatusRascunho StatusProposta = "rascunho"
	StatusGerada   StatusProposta = "gerada"
	StatusEnviada  StatusProposta = "enviada"
)

var transicoesStatus = map[StatusProposta]StatusProposta{
	StatusRascunho: StatusGerada,
	StatusGerada:   StatusEnviada,
}

// PodeIrPara reports whether next is the single allowed successor of s.
func (s StatusProposta) PodeIrPara(next StatusProposta) bool {
	prox, ok := transicoesStatus[s]
	return ok && prox == next
}

// Proposta is the commercial proposal aggregate.
// Snapshot holds the creation payload verbatim; neither it nor the item
// display fields are ever updated after insert.
type Proposta struct {
	ID     int64          `gorm:"primaryKey"`
	Numero string         `gorm:"uniqueIndex;not null"` // e.g. "JOA-2025-00001"
	Tipo   TipoProposta   `gorm:"type:varchar(20);not null"`
	Status StatusProposta `gorm:"type:varchar(20);not null;default:'rascunho'"`

	ClienteNome         string `gorm:"not null"`
	ClienteLocalEntrega string `gorm:"not null"`

	LocacaoAtiva         bool `gorm:"not null;default:false"`
	LocacaoQuantidade    *int
	LocacaoValorUnitario decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	LocacaoValorTotal    decimal.NullDecimal `gorm:"type:decimal(10,2)"`

	SubtotalItens decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ValorTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	UnidadeID int64 `gorm:"not null;index"`
	UsuarioID int64 `gorm:"not null;index"`

	Versao             int `gorm:"not null;default:1"`
	PropostaOriginalID *int64

	Snapshot *string `gorm:"type:text"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	GeradaEm    *time.Time
	EnviadaEm   *time.Time
	EnviadaPara *string

	Itens []PropostaItem `gorm:"foreignKey:PropostaID;constraint:OnDelete:CASCADE"`
}

func (Proposta) TableName() string { return "propostas" }

// PropostaItem is a priced line owned by one Proposta.
// Catalog ids are kept for traceability only; no FK to the catalogs so that
// catalog rows can be edited or removed without touching issued proposals.
type PropostaItem struct {
	ID         int64 `gorm:"primaryKey"`
	PropostaID int64 `gorm:"not null;index"`

	TipoGasID   *int64
	TipoGasNome string `gorm:"not null"`

	CapacidadeID    *int64
	CapacidadeTexto *string

	UnidadeMedidaID   *int64
	UnidadeMedidaNome string `gorm:"not null"`

	ValorUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CondicaoPagamentoID        *int64
	CondicaoPagamentoDescricao string `gorm:"not null"`

	Ordem     int `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (PropostaItem) TableName() string { return "proposta_itens" }

// ValorMaximo is the largest amount a decimal(10,2) column holds.
var ValorMaximo = decimal.New(9999999999, -2)

// ValorMonetarioValido reports whether v is a non-negative amount that a
// decimal(10,2) column stores exactly: at most two decimal places and no
// more than ValorMaximo.
func ValorMonetarioValido(v decimal.Decimal) bool {
	return !v.IsNegative() && v.Equal(v.Round(2)) && v.LessThanOrEqual(ValorMaximo)
}

// Totais are always derived, never edited.
type Totais struct {
	Subtotal decimal.Decimal
	Locacao  decimal.Decimal
	Total    decimal.Decimal
}

// TotalLocacao returns quantidade × valorUnitario, or zero when the rental
// block is disabled.
func TotalLocacao(ativa bool, quantidade *int, valorUnitario decimal.NullDecimal) decimal.Decimal {
	if !ativa || quantidade == nil || !valorUnitario.Valid {
		return decimal.Zero
	}
	return valorUnitario.Decimal.Mul(decimal.NewFromInt(int64(*quantidade)))
}

// CalcularTotais recomputes the totals from items and the rental block.
func CalcularTotais(itens []PropostaItem, ativa bool, quantidade *int, valorUnitario decimal.NullDecimal) Totais {
	subtotal := decimal.Zero
	for _, it := range itens {
		subtotal = subtotal.Add(it.ValorUnitario)
	}
	loc := TotalLocacao(ativa, quantidade, valorUnitario)
	return Totais{Subtotal: subtotal, Locacao: loc, Total: subtotal.Add(loc)}
}

// Totais recomputes totals from the loaded items, ignoring the stored columns.
func (p *Proposta) Totais() Totais {
	return CalcularTotais(p.Itens, p.LocacaoAtiva, p.LocacaoQuantidade, p.LocacaoValorUnitario)
}
