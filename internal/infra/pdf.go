package infra

// pdf.go: proposal document rendering with go-pdf/fpdf, A4 portrait.
// Page 1 is a cover that depends on the proposal type; page 2 onwards is the
// shared data page (client, items, rental, totals, signature).
//
// Output is deterministic for a given Modelo: PDF dates come from the
// proposal creation time and the catalog is sorted.

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"propostas/internal/documento"
	"propostas/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
)

const (
	pagLargura = 210.0
	pagAltura  = 297.0
	margem     = 15.0
	conteudo   = pagLargura - 2*margem
	rodapeY    = 275.0
)

type cor struct{ r, g, b int }

var (
	corAzulEscuro = cor{0x00, 0x33, 0x66}
	corAzul       = cor{0x00, 0xA8, 0xE8}
	corAzulMedio  = cor{0x0B, 0x9B, 0xD9}
	corAzulClaro  = cor{0xEF, 0xF6, 0xFF}
	corNoite      = cor{0x05, 0x20, 0x30}
	corGrafite    = cor{0x1A, 0x1D, 0x29}
	corTexto      = cor{0x11, 0x18, 0x27}
	corCinza      = cor{0x6B, 0x72, 0x80}
	corCinzaClaro = cor{0xF9, 0xFA, 0xFB}
	corBorda      = cor{0xE5, 0xE7, 0xEB}
	corBranco     = cor{0xFF, 0xFF, 0xFF}
)

// PDFRenderer turns a documento.Modelo into a PDF stream.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Renderizar writes the proposal document to w.
func (r *PDFRenderer) Renderizar(w io.Writer, m *documento.Modelo) error {
	if m == nil {
		return fmt.Errorf("pdf: nil model")
	}
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margem, margem, margem)
	pdf.SetCreationDate(m.CriadoEm)
	pdf.SetModificationDate(m.CriadoEm)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Proposta "+m.Numero, true)
	pdf.SetAuthor(m.Vendedor, true)
	pdf.SetCreator("propostas", false)

	d := &desenho{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), m: m}
	d.logo = d.registrar(m.Logo)
	d.hero = d.registrar(m.Hero)

	pdf.SetFooterFunc(func() {
		// cover pages draw their own footer
		if pdf.PageNo() > 1 {
			d.rodapeClaro()
		}
	})

	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	switch m.Tipo {
	case model.TipoLiquido:
		d.capaLiquido()
	default:
		d.capaCilindro()
	}

	pdf.SetAutoPageBreak(true, pagAltura-rodapeY+5)
	pdf.AddPage()
	d.paginaDados()

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return pdf.Output(w)
}

type desenho struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	m    *documento.Modelo
	logo string // registered image names; empty when unavailable
	hero string
}

// registrar loads an image into the document. Undecodable bytes are logged
// and skipped so a broken asset never fails the whole document.
func (d *desenho) registrar(img *documento.Imagem) string {
	if img == nil || len(img.Dados) == 0 {
		return ""
	}
	d.pdf.RegisterImageOptionsReader(img.Nome, fpdf.ImageOptions{ImageType: img.Tipo}, bytes.NewReader(img.Dados))
	if !d.pdf.Ok() {
		log.Warn().Err(d.pdf.Error()).Str("asset", img.Nome).Msg("pdf: image skipped")
		d.pdf.ClearError()
		return ""
	}
	return img.Nome
}

func (d *desenho) imagem(nome string, x, y, w, h float64) {
	d.pdf.ImageOptions(nome, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
}

func (d *desenho) fonte(estilo string, tamanho float64, c cor) {
	d.pdf.SetFont("Helvetica", estilo, tamanho)
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

func (d *desenho) preencher(c cor) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *desenho) tracar(c cor)    { d.pdf.SetDrawColor(c.r, c.g, c.b) }

// texto writes a single line at (x, y) inside width w.
func (d *desenho) texto(x, y, w, h float64, s, alinhamento string) {
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, h, d.ajustar(s, w), "", 0, alinhamento, false, 0, "")
}

// ajustar truncates s with "..." so it fits in w at the current font.
func (d *desenho) ajustar(s string, w float64) string {
	t := d.tr(s)
	if d.pdf.GetStringWidth(t) <= w-1 {
		return t
	}
	for len(t) > 0 && d.pdf.GetStringWidth(t+"...") > w-1 {
		t = t[:len(t)-1]
	}
	return t + "..."
}

func (d *desenho) placeholderLogo(x, y, w, h float64) {
	d.tracar(corBorda)
	d.pdf.Rect(x, y, w, h, "D")
	d.fonte("", 8, corCinza)
	d.texto(x, y, w, h, "Logo", "CM")
}

// ── Cover: cylinders ─────────────────────────────────────────────────────────

func (d *desenho) capaCilindro() {
	capa := d.m.Template.Capa

	if d.logo != "" {
		d.imagem(d.logo, margem, 12, 45, 0)
	} else {
		d.placeholderLogo(margem, 12, 45, 18)
	}

	d.fonte("B", 18, corAzulEscuro)
	d.texto(margem, 12, conteudo, 8, capa.Titulo, "R")
	d.fonte("", 11, corAzul)
	d.texto(margem, 20, conteudo, 6, capa.Subtitulo, "R")
	d.fonte("", 9, corTexto)
	d.texto(margem, 27, conteudo, 5, "Nº: "+d.m.Numero, "R")
	d.texto(margem, 32, conteudo, 5, "Data: "+d.m.Data, "R")

	d.tracar(corAzul)
	d.pdf.SetLineWidth(0.8)
	d.pdf.Line(margem, 40, pagLargura-margem, 40)
	d.pdf.SetLineWidth(0.2)

	if d.hero != "" {
		d.imagem(d.hero, margem, 46, conteudo, 85)
	} else {
		d.preencher(corAzulClaro)
		d.pdf.Rect(margem, 46, conteudo, 85, "F")
	}

	d.fonte("B", 14, corAzulEscuro)
	d.texto(margem, 138, conteudo, 8, capa.SecaoTitulo, "L")

	const colunas, espaco, altura = 3, 5.0, 28.0
	largura := (conteudo - espaco*(colunas-1)) / colunas
	for i, seg := range capa.Segmentos {
		x := margem + float64(i%colunas)*(largura+espaco)
		y := 149 + float64(i/colunas)*(altura+espaco)
		d.cartao(x, y, largura, altura, seg)
	}

	linhas := (len(capa.Segmentos) + colunas - 1) / colunas
	y := 149 + float64(linhas)*(altura+espaco) + 3
	d.preencher(corCinzaClaro)
	d.pdf.Rect(margem, y, conteudo, 38, "F")
	d.fonte("B", 12, corAzulEscuro)
	d.texto(margem+5, y+4, conteudo-10, 7, capa.Destaque.Titulo, "L")
	d.fonte("", 10, corTexto)
	d.pdf.SetXY(margem+5, y+13)
	d.pdf.MultiCell(conteudo-10, 5, d.tr(capa.Destaque.Descricao), "", "L", false)

	d.rodapeClaro()
}

func (d *desenho) cartao(x, y, w, h float64, seg documento.Segmento) {
	d.preencher(corAzulClaro)
	d.pdf.Rect(x, y, w, h, "F")
	d.preencher(corAzulMedio)
	d.pdf.Rect(x, y, 1.5, h, "F")
	d.fonte("B", 10, corAzulEscuro)
	d.texto(x+4, y+3, w-6, 6, seg.Titulo, "L")
	d.fonte("", 8, corTexto)
	d.pdf.SetXY(x+4, y+10)
	d.pdf.MultiCell(w-7, 4, d.tr(seg.Descricao), "", "L", false)
}

// ── Cover: liquid ────────────────────────────────────────────────────────────

func (d *desenho) capaLiquido() {
	capa := d.m.Template.Capa
	const banda = 125.0

	d.preencher(corNoite)
	d.pdf.Rect(0, 0, pagLargura, banda, "F")
	if d.hero != "" {
		d.pdf.SetAlpha(0.3, "Normal")
		d.imagem(d.hero, 0, 0, pagLargura, banda)
		d.pdf.SetAlpha(1, "Normal")
	}

	if d.logo != "" {
		d.imagem(d.logo, margem, 12, 45, 0)
	}
	d.fonte("B", 10, corBranco)
	d.texto(margem, 12, conteudo, 5, "Nº "+d.m.Numero, "R")
	d.fonte("", 9, corBranco)
	d.texto(margem, 17, conteudo, 5, d.m.Data, "R")

	y := 42.0
	d.fonte("B", 30, corBranco)
	for _, l := range capa.Manchete {
		d.texto(margem, y, conteudo, 12, l, "L")
		y += 12
	}
	d.preencher(corBranco)
	d.pdf.Rect(margem, y+3, 50, 2, "F")
	y += 10
	d.fonte("", 11, corAzulClaro)
	for _, l := range capa.Chamada {
		d.texto(margem, y, conteudo, 6, l, "L")
		y += 6
	}

	d.fonte("B", 16, corAzulEscuro)
	d.texto(margem, banda+12, conteudo, 8, capa.SecaoTitulo, "C")
	d.fonte("", 10, corCinza)
	d.texto(margem, banda+21, conteudo, 6, capa.SecaoTexto, "C")

	const espaco, altura = 6.0, 34.0
	largura := (conteudo - espaco) / 2
	for i, seg := range capa.Segmentos {
		x := margem + float64(i%2)*(largura+espaco)
		y := banda + 34 + float64(i/2)*(altura+espaco)
		d.diferencial(x, y, largura, altura, seg)
	}

	d.rodapeEscuro()
}

func (d *desenho) diferencial(x, y, w, h float64, seg documento.Segmento) {
	d.tracar(corAzulMedio)
	d.pdf.SetLineWidth(0.4)
	d.pdf.Rect(x, y, w, h, "D")
	d.pdf.SetLineWidth(0.2)
	d.preencher(corAzulMedio)
	d.pdf.Rect(x+5, y+6, 3, 3, "F")
	d.fonte("B", 11, corAzulEscuro)
	d.texto(x+11, y+4.5, w-16, 6, seg.Titulo, "L")
	d.fonte("", 9, corTexto)
	d.pdf.SetXY(x+11, y+13)
	d.pdf.MultiCell(w-16, 4.5, d.tr(seg.Descricao), "", "L", false)
}

// ── Footers ──────────────────────────────────────────────────────────────────

func (d *desenho) rodapeClaro() {
	t := d.m.Timbre
	d.tracar(corBorda)
	d.pdf.Line(margem, rodapeY, pagLargura-margem, rodapeY)
	d.fonte("", 8, corCinza)
	d.texto(margem, rodapeY+3, conteudo/2, 4, t.Unidade, "L")
	d.texto(margem, rodapeY+7, conteudo/2, 4, t.Endereco, "L")
	d.texto(margem+conteudo/2, rodapeY+3, conteudo/2, 4, contato(t), "R")
	d.texto(margem+conteudo/2, rodapeY+7, conteudo/2, 4, t.Site, "R")
}

func (d *desenho) rodapeEscuro() {
	t := d.m.Timbre
	d.preencher(corGrafite)
	d.pdf.Rect(0, rodapeY-5, pagLargura, pagAltura-rodapeY+5, "F")
	d.fonte("B", 9, corBranco)
	d.texto(margem, rodapeY, conteudo/2, 5, t.Unidade, "L")
	d.fonte("", 8, corBranco)
	d.texto(margem, rodapeY+5, conteudo/2, 4, t.Endereco, "L")
	d.texto(margem+conteudo/2, rodapeY, conteudo/2, 5, contato(t), "R")
	d.texto(margem+conteudo/2, rodapeY+5, conteudo/2, 4, t.Site, "R")
}

func contato(t documento.Timbre) string {
	var partes []string
	for _, p := range []string{t.Telefone, t.Email} {
		if p != "" {
			partes = append(partes, p)
		}
	}
	return strings.Join(partes, " | ")
}

// ── Data page ────────────────────────────────────────────────────────────────

var colunasItens = []struct {
	titulo  string
	largura float64
	alinha  string
}{
	{"DESCRIÇÃO", 62, "L"},
	{"CAPACIDADE", 25, "L"},
	{"UNIDADE", 22, "L"},
	{"VALOR UNIT.", 28, "L"},
	{"PAGAMENTO", 43, "R"},
}

func (d *desenho) paginaDados() {
	m := d.m
	pdf := d.pdf

	if d.logo != "" {
		d.imagem(d.logo, margem, 12, 32, 0)
	}
	d.fonte("", 9, corCinza)
	d.texto(margem, 14, conteudo, 5, m.Numero, "R")
	d.tracar(corBorda)
	pdf.Line(margem, 30, pagLargura-margem, 30)

	// client / details
	meia := conteudo / 2
	d.fonte("", 8, corCinza)
	d.texto(margem, 35, meia, 4, "CLIENTE", "L")
	d.texto(margem+meia, 35, meia, 4, "DETALHES", "L")
	d.fonte("B", 11, corTexto)
	d.texto(margem, 40, meia-4, 6, m.ClienteNome, "L")
	d.fonte("", 9, corTexto)
	pdf.SetXY(margem, 46)
	pdf.MultiCell(meia-4, 4.5, d.tr(m.ClienteLocalEntrega), "", "L", false)
	d.texto(margem+meia, 40, meia, 5, "Tipo: "+m.Template.Rotulo, "L")
	d.texto(margem+meia, 45, meia, 5, "Vendedor: "+m.Vendedor, "L")
	d.texto(margem+meia, 50, meia, 5, "Data: "+m.Data, "L")

	// items
	pdf.SetXY(margem, 62)
	d.cabecalhoItens()
	d.fonte("", 9, corTexto)
	for i, l := range m.Linhas {
		if pdf.GetY()+7 > rodapeY-5 {
			pdf.AddPage()
			pdf.SetY(margem + 5)
			d.cabecalhoItens()
			d.fonte("", 9, corTexto)
		}
		zebra := i%2 == 1
		d.preencher(corAzulClaro)
		valores := []string{l.Descricao, l.Capacidade, l.Unidade, documento.FormatarMoeda(l.ValorUnitario), l.Pagamento}
		for j, c := range colunasItens {
			if j == 4 {
				pdf.SetFontSize(8)
			}
			pdf.CellFormat(c.largura, 7, d.ajustar(valores[j], c.largura), "B", 0, c.alinha, zebra, 0, "")
		}
		pdf.SetFontSize(9)
		pdf.Ln(-1)
	}

	// rental
	if loc := m.Locacao; loc != nil {
		d.garantirEspaco(22)
		y := pdf.GetY() + 6
		d.preencher(corAzulClaro)
		pdf.Rect(margem, y, conteudo, 18, "F")
		d.fonte("B", 11, corAzulMedio)
		d.texto(margem+4, y+2, conteudo-8, 6, loc.Titulo, "L")
		d.fonte("", 10, corTexto)
		d.texto(margem+4, y+9, conteudo/2, 6,
			fmt.Sprintf("%d %s x %s", loc.Quantidade, m.Template.LocacaoUnidade, documento.FormatarMoeda(loc.ValorUnitario)), "L")
		d.fonte("B", 11, corTexto)
		d.texto(margem+conteudo/2, y+9, conteudo/2-4, 6, "Total: "+documento.FormatarMoeda(loc.ValorTotal), "R")
		pdf.SetY(y + 18)
	}

	// totals
	d.garantirEspaco(26)
	y := pdf.GetY() + 6
	x := margem + conteudo - 80
	d.fonte("", 10, corTexto)
	d.texto(x, y, 45, 6, "Subtotal dos itens", "L")
	d.texto(x+45, y, 35, 6, documento.FormatarMoeda(m.Subtotal), "R")
	if m.Locacao != nil {
		y += 6
		d.texto(x, y, 45, 6, "Locação mensal", "L")
		d.texto(x+45, y, 35, 6, documento.FormatarMoeda(m.Locacao.ValorTotal), "R")
	}
	y += 7
	d.preencher(corAzulEscuro)
	pdf.Rect(x, y, 80, 8, "F")
	d.fonte("B", 11, corBranco)
	d.texto(x+2, y+1, 43, 6, "VALOR TOTAL", "L")
	d.texto(x+45, y+1, 33, 6, documento.FormatarMoeda(m.Total), "R")
	pdf.SetY(y + 8)

	// signature
	d.garantirEspaco(30)
	y = pdf.GetY() + 18
	cx := pagLargura / 2
	d.tracar(corTexto)
	pdf.Line(cx-35, y, cx+35, y)
	d.fonte("B", 10, corTexto)
	d.texto(cx-50, y+2, 100, 5, m.Vendedor, "C")
	d.fonte("", 9, corCinza)
	d.texto(cx-50, y+7, 100, 5, "Comercial - "+m.Timbre.Unidade, "C")
}

func (d *desenho) cabecalhoItens() {
	d.preencher(corAzulEscuro)
	d.fonte("B", 8, corBranco)
	for _, c := range colunasItens {
		d.pdf.CellFormat(c.largura, 7, d.tr(c.titulo), "", 0, c.alinha, true, 0, "")
	}
	d.pdf.Ln(-1)
}

// garantirEspaco starts a new page when less than h mm remain above the footer.
func (d *desenho) garantirEspaco(h float64) {
	if d.pdf.GetY()+h > rodapeY-5 {
		d.pdf.AddPage()
		d.pdf.SetY(margem + 5)
	}
}
