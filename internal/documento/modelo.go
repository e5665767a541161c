// Package documento holds the page model handed to the PDF renderer.
// A Modelo is fully resolved: no lookups happen while rendering.
package documento

import (
	"time"

	"propostas/internal/model"

	"github.com/shopspring/decimal"
)

// Imagem is an asset loaded into memory. Tipo is the fpdf image type
// ("PNG" or "JPG").
type Imagem struct {
	Nome  string
	Tipo  string
	Dados []byte
}

// Timbre is the issuing branch letterhead.
type Timbre struct {
	Unidade     string
	RazaoSocial string
	Endereco    string
	Telefone    string
	Email       string
	Site        string
}

// Linha is one row of the items table, already denormalized.
type Linha struct {
	Descricao     string
	Capacidade    string // "-" when absent
	Unidade       string
	ValorUnitario decimal.Decimal
	Pagamento     string
}

type Locacao struct {
	Titulo        string
	Quantidade    int
	ValorUnitario decimal.Decimal
	ValorTotal    decimal.Decimal
}

type Modelo struct {
	Tipo     model.TipoProposta
	Numero   string
	Data     string    // dd/mm/yyyy
	CriadoEm time.Time // fixes PDF metadata dates

	ClienteNome         string
	ClienteLocalEntrega string
	Vendedor            string

	Timbre  Timbre
	Linhas  []Linha
	Locacao *Locacao // nil when the rental block is disabled

	Subtotal decimal.Decimal
	Total    decimal.Decimal

	Template Template
	Logo     *Imagem
	Hero     *Imagem
}

// NomeArquivo is the download name for the rendered document.
func (m *Modelo) NomeArquivo() string {
	return NomeArquivo(m.Numero)
}

func NomeArquivo(numero string) string {
	return "Proposta-" + numero + ".pdf"
}
