package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"propostas/internal/apierror"
	"propostas/internal/documento"
	"propostas/internal/dto"
	"propostas/internal/infra"
	"propostas/internal/model"
	"propostas/internal/repository"

	"github.com/rs/zerolog/log"
)

type DocumentoService interface {
	// Montar builds the page model of a proposal.
	Montar(ctx context.Context, principal *model.Principal, id int64) (*documento.Modelo, error)
	GerarPDF(ctx context.Context, principal *model.Principal, id int64) (*dto.DocumentoPDF, error)
}

type Renderizador interface {
	Renderizar(w io.Writer, m *documento.Modelo) error
}

type CarregadorAssets interface {
	Carregar(rel string) *documento.Imagem
}

type documentoService struct {
	repo      repository.PropostaRepository
	unidades  repository.UnidadeRepository
	usuarios  repository.UsuarioRepository
	templates *documento.Templates
	assets    CarregadorAssets
	render    Renderizador
	site      string
	loc       *time.Location
}

func NewDocumentoService(
	repo repository.PropostaRepository,
	unidades repository.UnidadeRepository,
	usuarios repository.UsuarioRepository,
	templates *documento.Templates,
	assets CarregadorAssets,
	render Renderizador,
	site string,
	loc *time.Location,
) DocumentoService {
	if site == "" {
		site = templates.Site
	}
	return &documentoService{
		repo:      repo,
		unidades:  unidades,
		usuarios:  usuarios,
		templates: templates,
		assets:    assets,
		render:    render,
		site:      site,
		loc:       loc,
	}
}

func (s *documentoService) Montar(ctx context.Context, principal *model.Principal, id int64) (*documento.Modelo, error) {
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
	if p.Snapshot == nil || *p.Snapshot == "" {
		return nil, fmt.Errorf("proposta %s sem snapshot: %w", p.Numero, apierror.ErrInvalidState)
	}

	unidade, err := s.unidades.FindByID(ctx, p.UnidadeID)
	if err != nil {
		return nil, naoEncontrado(err, "unidade", p.UnidadeID, apierror.ErrNotFound)
	}
	autor, err := s.usuarios.FindByID(ctx, p.UsuarioID)
	if err != nil {
		return nil, naoEncontrado(err, "usuário", p.UsuarioID, apierror.ErrNotFound)
	}

	tpl, err := s.templates.Para(p.Tipo)
	if err != nil {
		return nil, err
	}

	// Display comes from the stored items; totals are recomputed from them.
	tot := p.Totais()
	m := &documento.Modelo{
		Tipo:                p.Tipo,
		Numero:              p.Numero,
		Data:                documento.FormatarData(p.CreatedAt, s.loc),
		CriadoEm:            p.CreatedAt,
		ClienteNome:         p.ClienteNome,
		ClienteLocalEntrega: p.ClienteLocalEntrega,
		Vendedor:            autor.Nome,
		Timbre: documento.Timbre{
			Unidade:     unidade.Nome,
			RazaoSocial: valor(unidade.RazaoSocial),
			Endereco:    valor(unidade.Endereco),
			Telefone:    valor(unidade.Telefone),
			Email:       valor(unidade.Email),
			Site:        s.site,
		},
		Linhas:   make([]documento.Linha, 0, len(p.Itens)),
		Subtotal: tot.Subtotal,
		Total:    tot.Total,
		Template: tpl,
		Logo:     s.assets.Carregar(s.templates.Logo),
		Hero:     s.assets.Carregar(tpl.Hero),
	}
	if unidade.Site != nil && *unidade.Site != "" {
		m.Timbre.Site = *unidade.Site
	}
	for _, it := range p.Itens {
		capacidade := "-"
		if it.CapacidadeTexto != nil && *it.CapacidadeTexto != "" {
			capacidade = *it.CapacidadeTexto
		}
		m.Linhas = append(m.Linhas, documento.Linha{
			Descricao:     it.TipoGasNome,
			Capacidade:    capacidade,
			Unidade:       it.UnidadeMedidaNome,
			ValorUnitario: it.ValorUnitario,
			Pagamento:     it.CondicaoPagamentoDescricao,
		})
	}
	if p.LocacaoAtiva && p.LocacaoQuantidade != nil && p.LocacaoValorUnitario.Valid {
		m.Locacao = &documento.Locacao{
			Titulo:        tpl.LocacaoTitulo,
			Quantidade:    *p.LocacaoQuantidade,
			ValorUnitario: p.LocacaoValorUnitario.Decimal,
			ValorTotal:    tot.Locacao,
		}
	}
	return m, nil
}

func (s *documentoService) GerarPDF(ctx context.Context, principal *model.Principal, id int64) (*dto.DocumentoPDF, error) {
	m, err := s.Montar(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	inicio := time.Now()
	var buf bytes.Buffer
	if err := s.render.Renderizar(&buf, m); err != nil {
		return nil, fmt.Errorf("renderizar %s: %w", m.Numero, err)
	}
	dur := time.Since(inicio)
	infra.PDFDuracao.WithLabelValues(string(m.Tipo)).Observe(dur.Seconds())
	log.Debug().Str("numero", m.Numero).Dur("duracao", dur).Int("bytes", buf.Len()).Msg("pdf gerado")

	return &dto.DocumentoPDF{
		Numero:      m.Numero,
		NomeArquivo: m.NomeArquivo(),
		Conteudo:    buf.Bytes(),
	}, nil
}

func valor(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
