package documento

import (
	_ "embed"
	"fmt"

	"propostas/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesPadrao []byte

type Segmento struct {
	Titulo    string `yaml:"titulo"`
	Descricao string `yaml:"descricao"`
}

// Capa is the cover page content of one layout variant.
type Capa struct {
	Titulo      string     `yaml:"titulo"`
	Subtitulo   string     `yaml:"subtitulo"`
	Manchete    []string   `yaml:"manchete"`
	Chamada     []string   `yaml:"chamada"`
	SecaoTitulo string     `yaml:"secao_titulo"`
	SecaoTexto  string     `yaml:"secao_texto"`
	Segmentos   []Segmento `yaml:"segmentos"`
	Destaque    Segmento   `yaml:"destaque"`
}

// Template selects layout and fixed texts for a proposal type.
type Template struct {
	Tipo           model.TipoProposta `yaml:"-"`
	Rotulo         string             `yaml:"rotulo"`
	Hero           string             `yaml:"hero"`
	LocacaoTitulo  string             `yaml:"locacao_titulo"`
	LocacaoUnidade string             `yaml:"locacao_unidade"`
	Capa           Capa               `yaml:"capa"`
}

// Templates is the parsed templates document.
type Templates struct {
	Logo    string
	Site    string
	porTipo map[model.TipoProposta]Template
}

type arquivoTemplates struct {
	Logo    string              `yaml:"logo"`
	Site    string              `yaml:"site"`
	Modelos map[string]Template `yaml:"modelos"`
}

// CarregarTemplates parses a templates document. Both proposal types must be present.
func CarregarTemplates(data []byte) (*Templates, error) {
	var arq arquivoTemplates
	if err := yaml.Unmarshal(data, &arq); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	t := &Templates{Logo: arq.Logo, Site: arq.Site, porTipo: make(map[model.TipoProposta]Template)}
	for nome, tpl := range arq.Modelos {
		tipo := model.TipoProposta(nome)
		if !tipo.Valido() {
			return nil, fmt.Errorf("templates: tipo desconhecido %q", nome)
		}
		tpl.Tipo = tipo
		t.porTipo[tipo] = tpl
	}
	for _, tipo := range []model.TipoProposta{model.TipoCilindro, model.TipoLiquido} {
		if _, ok := t.porTipo[tipo]; !ok {
			return nil, fmt.Errorf("templates: modelo %q ausente", tipo)
		}
	}
	return t, nil
}

// TemplatesPadrao returns the embedded templates.
func TemplatesPadrao() (*Templates, error) {
	return CarregarTemplates(templatesPadrao)
}

// Para returns the template of a proposal type.
func (t *Templates) Para(tipo model.TipoProposta) (Template, error) {
	tpl, ok := t.porTipo[tipo]
	if !ok {
		return Template{}, fmt.Errorf("templates: sem modelo para %q", tipo)
	}
	return tpl, nil
}
