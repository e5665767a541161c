package service

import (
	"context"
	"errors"
	"fmt"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/model"
	"propostas/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Display values used in lenient mode when a catalog id does not resolve.
const (
	GasDesconhecido         = "Desconhecido"
	UnidadeMedidaPadrao     = "Un"
	CondicaoPagamentoPadrao = ""
)

// Enriquecedor copies catalog display text into proposal items at creation
// time. With estrito set, an unresolved required reference fails the item;
// otherwise it falls back to placeholder text.
type Enriquecedor struct {
	catalogo repository.CatalogoReader
	estrito  bool
}

func NewEnriquecedor(catalogo repository.CatalogoReader, estrito bool) *Enriquecedor {
	return &Enriquecedor{catalogo: catalogo, estrito: estrito}
}

// resolver looks up an optional id. Absent id or missing row yields nil, nil.
func resolver[T any](ctx context.Context, id *int64, find func(context.Context, int64) (*T, error)) (*T, error) {
	if id == nil {
		return nil, nil
	}
	v, err := find(ctx, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e *Enriquecedor) ausente(ordem int, campo string, id *int64) error {
	if id == nil {
		return fmt.Errorf("item %d: %s não informado: %w", ordem+1, campo, apierror.ErrInvalidInput)
	}
	return fmt.Errorf("item %d: %s %d não existe: %w", ordem+1, campo, *id, apierror.ErrInvalidInput)
}

// Enriquecer resolves one raw item. ordem is its zero-based position.
func (e *Enriquecedor) Enriquecer(ctx context.Context, tipo model.TipoProposta, raw dto.ItemPropostaRequest, ordem int) (model.PropostaItem, error) {
	it := model.PropostaItem{
		TipoGasID:           raw.TipoGasID,
		UnidadeMedidaID:     raw.UnidadeMedidaID,
		CondicaoPagamentoID: raw.CondicaoPagamentoID,
		ValorUnitario:       decimal.Zero,
		Ordem:               ordem,
	}
	if raw.ValorUnitario != nil {
		it.ValorUnitario = *raw.ValorUnitario
	}

	gas, err := resolver(ctx, raw.TipoGasID, e.catalogo.FindTipoGas)
	if err != nil {
		return it, err
	}
	switch {
	case gas != nil:
		it.TipoGasNome = gas.Nome
	case e.estrito:
		return it, e.ausente(ordem, "tipo de gás", raw.TipoGasID)
	default:
		it.TipoGasNome = GasDesconhecido
	}

	if tipo == model.TipoCilindro {
		it.CapacidadeID = raw.CapacidadeID
		capac, err := resolver(ctx, raw.CapacidadeID, e.catalogo.FindCapacidade)
		if err != nil {
			return it, err
		}
		if capac != nil {
			txt := capac.Tamanho
			it.CapacidadeTexto = &txt
		} else if e.estrito {
			return it, e.ausente(ordem, "capacidade", raw.CapacidadeID)
		}
	}

	um, err := resolver(ctx, raw.UnidadeMedidaID, e.catalogo.FindUnidadeMedida)
	if err != nil {
		return it, err
	}
	switch {
	case um != nil:
		it.UnidadeMedidaNome = um.Nome
	case e.estrito:
		return it, e.ausente(ordem, "unidade de medida", raw.UnidadeMedidaID)
	default:
		it.UnidadeMedidaNome = UnidadeMedidaPadrao
	}

	cond, err := resolver(ctx, raw.CondicaoPagamentoID, e.catalogo.FindCondicaoPagamento)
	if err != nil {
		return it, err
	}
	switch {
	case cond != nil:
		it.CondicaoPagamentoDescricao = cond.Descricao
	case e.estrito:
		return it, e.ausente(ordem, "condição de pagamento", raw.CondicaoPagamentoID)
	default:
		it.CondicaoPagamentoDescricao = CondicaoPagamentoPadrao
	}

	return it, nil
}
