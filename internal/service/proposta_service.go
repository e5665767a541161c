package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/infra"
	"propostas/internal/model"
	"propostas/internal/repository"
	"propostas/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PropostaService interface {
	// Criar validates, numbers and stores a proposal with its items in one
	// transaction. bruto is the request body kept verbatim as snapshot.
	Criar(ctx context.Context, principal *model.Principal, req dto.CriarPropostaRequest, bruto []byte) (*dto.CriarPropostaResponse, error)
	Obter(ctx context.Context, principal *model.Principal, id int64) (*dto.PropostaResponse, error)
	Listar(ctx context.Context, principal *model.Principal, filter dto.PropostaFilter) (*dto.PropostaListResponse, error)
	Excluir(ctx context.Context, principal *model.Principal, id int64) error
	// SolicitarEnvio queues email delivery and returns the job id.
	SolicitarEnvio(ctx context.Context, principal *model.Principal, id int64, req dto.EnviarPropostaRequest) (string, error)
	MarcarEnviada(ctx context.Context, id int64, destinatario string) error
}

// FilaEnvio is the delivery queue (worker.Dispatcher in production).
type FilaEnvio interface {
	EnqueueEnvio(ctx context.Context, payload worker.EnvioPayload) (string, error)
}

type propostaService struct {
	repo         repository.PropostaRepository
	unidades     repository.UnidadeRepository
	usuarios     repository.UsuarioRepository
	alocador     *AlocadorSequencia
	enriquecedor *Enriquecedor
	fila         FilaEnvio
	agora        func() time.Time
}

func NewPropostaService(
	repo repository.PropostaRepository,
	unidades repository.UnidadeRepository,
	usuarios repository.UsuarioRepository,
	alocador *AlocadorSequencia,
	enriquecedor *Enriquecedor,
	fila FilaEnvio,
) PropostaService {
	return &propostaService{
		repo:         repo,
		unidades:     unidades,
		usuarios:     usuarios,
		alocador:     alocador,
		enriquecedor: enriquecedor,
		fila:         fila,
		agora:        time.Now,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func naoEncontrado(err error, oque string, id int64, tipo error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", oque, id, tipo)
	}
	return err
}

// ── Criar ─────────────────────────────────────────────────────────────────────
//   1. wizard guards (nothing is read before the payload is complete)
//   2. resolve target branch and check the author
//   3. BEGIN TX: allocate number, insert header, enrich + insert items, totals
//   4. COMMIT

func (s *propostaService) Criar(ctx context.Context, principal *model.Principal, req dto.CriarPropostaRequest, bruto []byte) (*dto.CriarPropostaResponse, error) {
	if principal == nil {
		return nil, apierror.ErrUnauthenticated
	}
	if _, err := ValidarTudo(&req); err != nil {
		return nil, err
	}

	unidadeID, err := unidadeAlvo(principal, req.UnidadeID)
	if err != nil {
		return nil, err
	}
	unidade, err := s.unidades.FindByID(ctx, unidadeID)
	if err != nil {
		return nil, naoEncontrado(err, "unidade", unidadeID, apierror.ErrReferenceNotFound)
	}
	if !unidade.Ativo {
		return nil, fmt.Errorf("unidade %s inativa: %w", unidade.Nome, apierror.ErrInvalidInput)
	}

	autor, err := s.usuarios.FindByID(ctx, principal.UsuarioID)
	if err != nil {
		return nil, naoEncontrado(err, "usuário", principal.UsuarioID, apierror.ErrNotFound)
	}
	if !autor.Ativo {
		return nil, fmt.Errorf("usuário inativo: %w", apierror.ErrForbidden)
	}
	if !principal.Elevado() && (autor.UnidadeID == nil || *autor.UnidadeID != unidade.ID) {
		return nil, fmt.Errorf("usuário não pertence à unidade %s: %w", unidade.Nome, apierror.ErrForbidden)
	}

	snapshot := string(bruto)
	if len(bytes.TrimSpace(bruto)) == 0 {
		b, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}
		snapshot = string(b)
	}

	tipo := model.TipoProposta(req.Tipo)
	agora := s.agora()
	p := model.Proposta{
		Tipo:                tipo,
		Status:              model.StatusGerada,
		ClienteNome:         strings.TrimSpace(req.ClienteNome),
		ClienteLocalEntrega: strings.TrimSpace(req.ClienteLocalEntrega),
		LocacaoAtiva:        req.LocacaoAtiva,
		SubtotalItens:       decimal.Zero,
		ValorTotal:          decimal.Zero,
		UnidadeID:           unidade.ID,
		UsuarioID:           autor.ID,
		Versao:              1,
		Snapshot:            &snapshot,
		GeradaEm:            &agora,
	}
	if req.LocacaoAtiva {
		p.LocacaoQuantidade = req.LocacaoQuantidade
		p.LocacaoValorUnitario = decimal.NewNullDecimal(*req.LocacaoValorUnitario)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.alocador.Alocar(ctx, tx, unidade)
		if err != nil {
			return err
		}
		p.Numero = numero

		if err := s.repo.Create(ctx, tx, &p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("número %s já emitido: %w", numero, apierror.ErrInvalidState)
			}
			return err
		}

		for i, raw := range req.Itens {
			item, err := s.enriquecedor.Enriquecer(ctx, tipo, raw, i)
			if err != nil {
				return err
			}
			item.PropostaID = p.ID
			if err := s.repo.CreateItem(ctx, tx, &item); err != nil {
				return err
			}
			p.Itens = append(p.Itens, item)
		}

		tot := p.Totais()
		var locTotal decimal.NullDecimal
		if p.LocacaoAtiva {
			locTotal = decimal.NewNullDecimal(tot.Locacao)
		}
		p.SubtotalItens, p.ValorTotal, p.LocacaoValorTotal = tot.Subtotal, tot.Total, locTotal
		return s.repo.UpdateTotais(ctx, tx, p.ID, tot.Subtotal, tot.Total, locTotal)
	})
	if txErr != nil {
		return nil, txErr
	}

	infra.PropostasCriadas.WithLabelValues(string(tipo)).Inc()
	log.Info().
		Int64("proposta_id", p.ID).
		Str("numero", p.Numero).
		Str("tipo", string(tipo)).
		Int64("unidade_id", unidade.ID).
		Str("valor_total", p.ValorTotal.StringFixed(2)).
		Msg("proposta gerada")

	return &dto.CriarPropostaResponse{ID: p.ID, Numero: p.Numero}, nil
}

// unidadeAlvo picks the branch a proposal is issued for. Superadmins may
// choose any branch; everyone else issues for their own.
func unidadeAlvo(principal *model.Principal, pedida *int64) (int64, error) {
	switch {
	case pedida != nil && principal.Elevado():
		return *pedida, nil
	case pedida != nil:
		if principal.UnidadeID == nil || *principal.UnidadeID != *pedida {
			return 0, fmt.Errorf("unidade %d: %w", *pedida, apierror.ErrForbidden)
		}
		return *pedida, nil
	case principal.UnidadeID != nil:
		return *principal.UnidadeID, nil
	case principal.Elevado():
		return 0, fmt.Errorf("informe unidadeId para emitir como superadmin: %w", apierror.ErrInvalidInput)
	default:
		return 0, fmt.Errorf("usuário sem unidade: %w", apierror.ErrForbidden)
	}
}

// carregar loads a proposal and checks the principal may act on it.
func (s *propostaService) carregar(ctx context.Context, principal *model.Principal, id int64) (*model.Proposta, error) {
	if principal == nil {
		return nil, apierror.ErrUnauthenticated
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "proposta", id, apierror.ErrNotFound)
	}
	if !principal.PodeAcessar(p.UnidadeID) {
		return nil, fmt.Errorf("proposta %d: %w", id, apierror.ErrForbidden)
	}
	return p, nil
}

func (s *propostaService) Obter(ctx context.Context, principal *model.Principal, id int64) (*dto.PropostaResponse, error) {
	p, err := s.carregar(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return propostaToResponse(p), nil
}

func (s *propostaService) Listar(ctx context.Context, principal *model.Principal, filter dto.PropostaFilter) (*dto.PropostaListResponse, error) {
	if principal == nil {
		return nil, apierror.ErrUnauthenticated
	}
	var escopo *int64
	if !principal.Elevado() {
		if principal.UnidadeID == nil {
			return nil, fmt.Errorf("usuário sem unidade: %w", apierror.ErrForbidden)
		}
		escopo = principal.UnidadeID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	propostas, total, err := s.repo.List(ctx, filter, escopo)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PropostaListItem, 0, len(propostas))
	for _, p := range propostas {
		data = append(data, dto.PropostaListItem{
			ID:          p.ID,
			Numero:      p.Numero,
			Tipo:        string(p.Tipo),
			Status:      string(p.Status),
			ClienteNome: p.ClienteNome,
			ValorTotal:  p.ValorTotal,
			UnidadeID:   p.UnidadeID,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.PropostaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *propostaService) Excluir(ctx context.Context, principal *model.Principal, id int64) error {
	p, err := s.carregar(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	log.Info().Int64("proposta_id", p.ID).Str("numero", p.Numero).Int64("usuario_id", principal.UsuarioID).Msg("proposta excluída")
	return nil
}

func (s *propostaService) SolicitarEnvio(ctx context.Context, principal *model.Principal, id int64, req dto.EnviarPropostaRequest) (string, error) {
	p, err := s.carregar(ctx, principal, id)
	if err != nil {
		return "", err
	}
	// resending an already sent proposal is allowed
	if p.Status != model.StatusGerada && p.Status != model.StatusEnviada {
		return "", fmt.Errorf("proposta %s em %s não pode ser enviada: %w", p.Numero, p.Status, apierror.ErrInvalidState)
	}
	if p.Snapshot == nil || *p.Snapshot == "" {
		return "", fmt.Errorf("proposta %s sem snapshot: %w", p.Numero, apierror.ErrInvalidState)
	}
	if s.fila == nil {
		return "", errors.New("fila de envio indisponível")
	}
	return s.fila.EnqueueEnvio(ctx, worker.EnvioPayload{
		PropostaID:    p.ID,
		Email:         req.Email,
		SolicitadoPor: principal.UsuarioID,
	})
}

func (s *propostaService) MarcarEnviada(ctx context.Context, id int64, destinatario string) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return naoEncontrado(err, "proposta", id, apierror.ErrNotFound)
	}
	if p.Status == model.StatusEnviada {
		return nil
	}
	if !p.Status.PodeIrPara(model.StatusEnviada) {
		return fmt.Errorf("proposta %s: %s → enviada: %w", p.Numero, p.Status, apierror.ErrInvalidState)
	}
	n, err := s.repo.MarcarEnviada(ctx, id, destinatario, s.agora())
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("proposta %s mudou de status: %w", p.Numero, apierror.ErrInvalidState)
	}
	return nil
}

func propostaToResponse(p *model.Proposta) *dto.PropostaResponse {
	resp := &dto.PropostaResponse{
		ID:                  p.ID,
		Numero:              p.Numero,
		Tipo:                string(p.Tipo),
		Status:              string(p.Status),
		ClienteNome:         p.ClienteNome,
		ClienteLocalEntrega: p.ClienteLocalEntrega,
		LocacaoAtiva:        p.LocacaoAtiva,
		LocacaoQuantidade:   p.LocacaoQuantidade,
		SubtotalItens:       p.SubtotalItens,
		ValorTotal:          p.ValorTotal,
		UnidadeID:           p.UnidadeID,
		UsuarioID:           p.UsuarioID,
		Versao:              p.Versao,
		CreatedAt:           p.CreatedAt.Format(time.RFC3339),
		GeradaEm:            formatarOpcional(p.GeradaEm),
		EnviadaEm:           formatarOpcional(p.EnviadaEm),
		EnviadaPara:         p.EnviadaPara,
		Itens:               make([]dto.ItemPropostaResponse, 0, len(p.Itens)),
	}
	if p.LocacaoValorUnitario.Valid {
		v := p.LocacaoValorUnitario.Decimal
		resp.LocacaoValorUnitario = &v
	}
	if p.LocacaoValorTotal.Valid {
		v := p.LocacaoValorTotal.Decimal
		resp.LocacaoValorTotal = &v
	}
	for _, it := range p.Itens {
		resp.Itens = append(resp.Itens, dto.ItemPropostaResponse{
			ID:                         it.ID,
			TipoGasID:                  it.TipoGasID,
			TipoGasNome:                it.TipoGasNome,
			CapacidadeID:               it.CapacidadeID,
			CapacidadeTexto:            it.CapacidadeTexto,
			UnidadeMedidaID:            it.UnidadeMedidaID,
			UnidadeMedidaNome:          it.UnidadeMedidaNome,
			ValorUnitario:              it.ValorUnitario,
			CondicaoPagamentoID:        it.CondicaoPagamentoID,
			CondicaoPagamentoDescricao: it.CondicaoPagamentoDescricao,
			Ordem:                      it.Ordem,
		})
	}
	return resp
}

func formatarOpcional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
