package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemPropostaRequest is one line of the creation payload. Every field is
// optional at the binding level: completeness is checked by the wizard guards
// so that the client gets the same messages it shows on each step.
type ItemPropostaRequest struct {
	TipoGasID           *int64           `json:"tipoGasId"           validate:"omitempty,min=1"`
	CapacidadeID        *int64           `json:"capacidadeId"        validate:"omitempty,min=1"`
	UnidadeMedidaID     *int64           `json:"unidadeMedidaId"     validate:"omitempty,min=1"`
	ValorUnitario       *decimal.Decimal `json:"valorUnitario"`
	CondicaoPagamentoID *int64           `json:"condicaoPagamentoId" validate:"omitempty,min=1"`
}

// CriarPropostaRequest is the body of POST /v1/propostas and of
// POST /v1/propostas/validar. The raw bytes are kept as the snapshot.
type CriarPropostaRequest struct {
	Tipo                string `json:"tipo"`
	ClienteNome         string `json:"clienteNome"         validate:"max=255"`
	ClienteLocalEntrega string `json:"clienteLocalEntrega" validate:"max=500"`

	LocacaoAtiva         bool             `json:"locacaoAtiva"`
	LocacaoQuantidade    *int             `json:"locacaoQuantidade"`
	LocacaoValorUnitario *decimal.Decimal `json:"locacaoValorUnitario"`
	// LocacaoValorTotal is accepted for compatibility and never used in totals.
	LocacaoValorTotal *decimal.Decimal `json:"locacaoValorTotal,omitempty"`

	Itens []ItemPropostaRequest `json:"itens" validate:"dive"`

	// UnidadeID lets a superadmin issue on behalf of a branch.
	UnidadeID *int64 `json:"unidadeId,omitempty" validate:"omitempty,min=1"`
}

// PropostaFilter is bound from query string of GET /v1/propostas.
type PropostaFilter struct {
	Tipo   string `form:"tipo"   validate:"omitempty,oneof=cilindro liquido"`
	Status string `form:"status" validate:"omitempty,oneof=rascunho gerada enviada"`
	Busca  string `form:"busca"  validate:"max=100"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type EnviarPropostaRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CriarPropostaResponse struct {
	ID     int64  `json:"id"`
	Numero string `json:"numero"`
}

type ValidacaoResponse struct {
	Valido bool   `json:"valido"`
	Etapa  string `json:"etapa"` // furthest step reached
	Erro   string `json:"erro,omitempty"`
}

type ItemPropostaResponse struct {
	ID                         int64           `json:"id"`
	TipoGasID                  *int64          `json:"tipoGasId"`
	TipoGasNome                string          `json:"tipoGasNome"`
	CapacidadeID               *int64          `json:"capacidadeId"`
	CapacidadeTexto            *string         `json:"capacidadeTexto"`
	UnidadeMedidaID            *int64          `json:"unidadeMedidaId"`
	UnidadeMedidaNome          string          `json:"unidadeMedidaNome"`
	ValorUnitario              decimal.Decimal `json:"valorUnitario"`
	CondicaoPagamentoID        *int64          `json:"condicaoPagamentoId"`
	CondicaoPagamentoDescricao string          `json:"condicaoPagamentoDescricao"`
	Ordem                      int             `json:"ordem"`
}

type PropostaResponse struct {
	ID                   int64                  `json:"id"`
	Numero               string                 `json:"numero"`
	Tipo                 string                 `json:"tipo"`
	Status               string                 `json:"status"`
	ClienteNome          string                 `json:"clienteNome"`
	ClienteLocalEntrega  string                 `json:"clienteLocalEntrega"`
	LocacaoAtiva         bool                   `json:"locacaoAtiva"`
	LocacaoQuantidade    *int                   `json:"locacaoQuantidade"`
	LocacaoValorUnitario *decimal.Decimal       `json:"locacaoValorUnitario"`
	LocacaoValorTotal    *decimal.Decimal       `json:"locacaoValorTotal"`
	SubtotalItens        decimal.Decimal        `json:"subtotalItens"`
	ValorTotal           decimal.Decimal        `json:"valorTotal"`
	UnidadeID            int64                  `json:"unidadeId"`
	UsuarioID            int64                  `json:"usuarioId"`
	Versao               int                    `json:"versao"`
	CreatedAt            string                 `json:"createdAt"`
	GeradaEm             *string                `json:"geradaEm"`
	EnviadaEm            *string                `json:"enviadaEm"`
	EnviadaPara          *string                `json:"enviadaPara"`
	Itens                []ItemPropostaResponse `json:"itens"`
}

type PropostaListItem struct {
	ID          int64           `json:"id"`
	Numero      string          `json:"numero"`
	Tipo        string          `json:"tipo"`
	Status      string          `json:"status"`
	ClienteNome string          `json:"clienteNome"`
	ValorTotal  decimal.Decimal `json:"valorTotal"`
	UnidadeID   int64           `json:"unidadeId"`
	CreatedAt   string          `json:"createdAt"`
}

type PropostaListResponse struct {
	Data  []PropostaListItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// DocumentoPDF is a rendered proposal ready to be streamed or attached.
type DocumentoPDF struct {
	Numero      string
	NomeArquivo string // Proposta-<numero>.pdf
	Conteudo    []byte
}
