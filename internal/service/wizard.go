package service

import (
	"strings"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/model"

	"github.com/shopspring/decimal"
)

// Etapa is a step of the proposal wizard: tipo → cliente → itens → revisao.
type Etapa string

const (
	EtapaTipo    Etapa = "tipo"
	EtapaCliente Etapa = "cliente"
	EtapaItens   Etapa = "itens"
	EtapaRevisao Etapa = "revisao"
)

var ordemEtapas = []Etapa{EtapaTipo, EtapaCliente, EtapaItens, EtapaRevisao}

// Guard messages shown to the user, one per failed rule.
const (
	MsgTipo               = "Selecione um tipo de proposta"
	MsgCliente            = "Preencha os dados do cliente"
	MsgSemItens           = "Adicione pelo menos um item"
	MsgItemIncompleto     = "Preencha todos os campos obrigatórios dos itens"
	MsgCapacidade         = "Selecione a capacidade para os itens de cilindro"
	MsgLocacao            = "Preencha os dados da locação"
	MsgLocacaoObrigatoria = "Para gases líquidos, a locação de tanque/telemetria é obrigatória."
	MsgLocacaoTanque      = "Preencha os valores de locação do tanque."
	MsgValorInvalido      = "Informe valores com no máximo 2 casas decimais e total até R$ 99.999.999,99"
)

// ErroEtapa is a failed guard. It matches apierror.ErrInvalidInput.
type ErroEtapa struct {
	Etapa    Etapa
	Mensagem string
}

func (e *ErroEtapa) Error() string { return e.Mensagem }
func (e *ErroEtapa) Unwrap() error { return apierror.ErrInvalidInput }

type guarda func(req *dto.CriarPropostaRequest) string

// guardas checks what must hold to leave each step.
var guardas = map[Etapa]guarda{
	EtapaTipo:    guardaTipo,
	EtapaCliente: guardaCliente,
	EtapaItens:   guardaItens,
}

func guardaTipo(req *dto.CriarPropostaRequest) string {
	if !model.TipoProposta(req.Tipo).Valido() {
		return MsgTipo
	}
	return ""
}

func guardaCliente(req *dto.CriarPropostaRequest) string {
	if vazio(req.ClienteNome) || vazio(req.ClienteLocalEntrega) {
		return MsgCliente
	}
	return ""
}

func guardaItens(req *dto.CriarPropostaRequest) string {
	if len(req.Itens) == 0 {
		return MsgSemItens
	}
	tipo := model.TipoProposta(req.Tipo)
	for _, it := range req.Itens {
		if it.TipoGasID == nil || it.UnidadeMedidaID == nil || it.CondicaoPagamentoID == nil ||
			it.ValorUnitario == nil || it.ValorUnitario.IsNegative() {
			return MsgItemIncompleto
		}
		if tipo == model.TipoCilindro && it.CapacidadeID == nil {
			return MsgCapacidade
		}
	}
	locacaoPreenchida := req.LocacaoQuantidade != nil && *req.LocacaoQuantidade > 0 &&
		req.LocacaoValorUnitario != nil && req.LocacaoValorUnitario.IsPositive()
	if req.LocacaoAtiva && !locacaoPreenchida {
		return MsgLocacao
	}
	if tipo == model.TipoLiquido {
		if !req.LocacaoAtiva {
			return MsgLocacaoObrigatoria
		}
		if !locacaoPreenchida {
			return MsgLocacaoTanque
		}
	}
	return guardaValores(req)
}

// guardaValores keeps every stored amount exact in decimal(10,2): item
// prices, the rental unit price, the rental total and the grand total.
func guardaValores(req *dto.CriarPropostaRequest) string {
	total := decimal.Zero
	for _, it := range req.Itens {
		if !model.ValorMonetarioValido(*it.ValorUnitario) {
			return MsgValorInvalido
		}
		total = total.Add(*it.ValorUnitario)
	}
	if req.LocacaoAtiva {
		if !model.ValorMonetarioValido(*req.LocacaoValorUnitario) {
			return MsgValorInvalido
		}
		loc := model.TotalLocacao(true, req.LocacaoQuantidade, decimal.NewNullDecimal(*req.LocacaoValorUnitario))
		if !model.ValorMonetarioValido(loc) {
			return MsgValorInvalido
		}
		total = total.Add(loc)
	}
	if !model.ValorMonetarioValido(total) {
		return MsgValorInvalido
	}
	return ""
}

func vazio(s string) bool { return strings.TrimSpace(s) == "" }

// Avancar checks the guard of atual and returns the next step.
// revisao is final; advancing from it returns it unchanged.
func Avancar(atual Etapa, req *dto.CriarPropostaRequest) (Etapa, error) {
	idx := -1
	for i, e := range ordemEtapas {
		if e == atual {
			idx = i
		}
	}
	if idx < 0 {
		return EtapaTipo, &ErroEtapa{Etapa: EtapaTipo, Mensagem: "etapa desconhecida: " + string(atual)}
	}
	if g, ok := guardas[atual]; ok {
		if msg := g(req); msg != "" {
			return atual, &ErroEtapa{Etapa: atual, Mensagem: msg}
		}
	}
	if idx == len(ordemEtapas)-1 {
		return atual, nil
	}
	return ordemEtapas[idx+1], nil
}

// ValidarTudo walks every step from the start. It returns the furthest step
// reached and the first failing guard, if any.
func ValidarTudo(req *dto.CriarPropostaRequest) (Etapa, error) {
	etapa := EtapaTipo
	for etapa != EtapaRevisao {
		prox, err := Avancar(etapa, req)
		if err != nil {
			return etapa, err
		}
		etapa = prox
	}
	return etapa, nil
}
