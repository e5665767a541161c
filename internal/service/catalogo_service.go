package service

import (
	"context"
	"fmt"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/model"
	"propostas/internal/repository"
)

type CatalogoService interface {
	// Listar returns the active entries the wizard offers for a proposal type.
	// An empty tipo lists gases of every type.
	Listar(ctx context.Context, tipo string) (*dto.CatalogosResponse, error)
}

type catalogoService struct {
	repo repository.CatalogoRepository
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo}
}

func (s *catalogoService) Listar(ctx context.Context, tipo string) (*dto.CatalogosResponse, error) {
	t := model.TipoProposta(tipo)
	if tipo != "" && !t.Valido() {
		return nil, fmt.Errorf("tipo %q: %w", tipo, apierror.ErrInvalidInput)
	}

	gases, err := s.repo.ListTiposGas(ctx, t)
	if err != nil {
		return nil, err
	}
	resp := &dto.CatalogosResponse{
		TiposGas:           make([]dto.TipoGasResponse, 0, len(gases)),
		Capacidades:        []dto.CapacidadeResponse{},
		UnidadesMedida:     []dto.UnidadeMedidaResponse{},
		CondicoesPagamento: []dto.CondicaoPagamentoResponse{},
	}
	for _, g := range gases {
		resp.TiposGas = append(resp.TiposGas, dto.TipoGasResponse{ID: g.ID, Nome: g.Nome, Tipo: g.Tipo})
	}

	// capacities only apply to cylinder proposals
	if t != model.TipoLiquido {
		caps, err := s.repo.ListCapacidades(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range caps {
			resp.Capacidades = append(resp.Capacidades, dto.CapacidadeResponse{ID: c.ID, Tamanho: c.Tamanho})
		}
	}

	ums, err := s.repo.ListUnidadesMedida(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range ums {
		resp.UnidadesMedida = append(resp.UnidadesMedida, dto.UnidadeMedidaResponse{ID: u.ID, Nome: u.Nome, Sigla: u.Sigla})
	}

	conds, err := s.repo.ListCondicoesPagamento(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range conds {
		resp.CondicoesPagamento = append(resp.CondicoesPagamento, dto.CondicaoPagamentoResponse{ID: c.ID, Descricao: c.Descricao, Dias: c.Dias})
	}
	return resp, nil
}
