// Package seed loads the reference data a fresh database needs: catalogs,
// branches, one commercial user per branch and the superadmin.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"propostas/internal/model"
	"propostas/internal/repository"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed dados.yaml
var dadosPadrao []byte

type unidadeSeed struct {
	Nome        string `yaml:"nome"`
	RazaoSocial string `yaml:"razao_social"`
	Endereco    string `yaml:"endereco"`
	Email       string `yaml:"email"`
	Cidade      string `yaml:"cidade"`
}

// Dados is the parsed seed file.
type Dados struct {
	TiposGas []struct {
		Nome string `yaml:"nome"`
		Tipo string `yaml:"tipo"`
	} `yaml:"tipos_gas"`
	CapacidadesKg  []string `yaml:"capacidades_kg"`
	CapacidadesM3  []string `yaml:"capacidades_m3"`
	UnidadesMedida []struct {
		Nome  string `yaml:"nome"`
		Sigla string `yaml:"sigla"`
	} `yaml:"unidades_medida"`
	CondicoesPagamento []struct {
		Descricao string `yaml:"descricao"`
		Dias      int    `yaml:"dias"`
	} `yaml:"condicoes_pagamento"`
	Unidades []unidadeSeed `yaml:"unidades"`
	Admin    struct {
		Nome  string `yaml:"nome"`
		Email string `yaml:"email"`
	} `yaml:"admin"`
}

func Carregar(data []byte) (*Dados, error) {
	var d Dados
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if d.Admin.Email == "" {
		return nil, errors.New("seed: admin.email é obrigatório")
	}
	return &d, nil
}

func Padrao() (*Dados, error) { return Carregar(dadosPadrao) }

// Repos are the writers the seed needs.
type Repos struct {
	Catalogo repository.CatalogoRepository
	Unidades repository.UnidadeRepository
	Usuarios repository.UsuarioRepository
}

// Relatorio counts what was written.
type Relatorio struct {
	Catalogo int
	Unidades int
	Usuarios int
}

// Executar writes d through r. senhaHash is stored for every seeded user.
func Executar(ctx context.Context, r Repos, d *Dados, senhaHash string) (Relatorio, error) {
	var rel Relatorio

	gases := make([]model.TipoGas, 0, len(d.TiposGas))
	for i, g := range d.TiposGas {
		gases = append(gases, model.TipoGas{Nome: g.Nome, Tipo: g.Tipo, Ativo: true, Ordem: i + 1})
	}
	caps := make([]model.Capacidade, 0, len(d.CapacidadesKg)+len(d.CapacidadesM3))
	for _, v := range d.CapacidadesKg {
		caps = append(caps, model.Capacidade{Tamanho: v + " kg", Ativo: true, Ordem: len(caps) + 1})
	}
	for _, v := range d.CapacidadesM3 {
		caps = append(caps, model.Capacidade{Tamanho: v + " m³", Ativo: true, Ordem: len(caps) + 1})
	}
	medidas := make([]model.UnidadeMedida, 0, len(d.UnidadesMedida))
	for i, m := range d.UnidadesMedida {
		medidas = append(medidas, model.UnidadeMedida{Nome: m.Nome, Sigla: m.Sigla, Ativo: true, Ordem: i + 1})
	}
	conds := make([]model.CondicaoPagamento, 0, len(d.CondicoesPagamento))
	for i, c := range d.CondicoesPagamento {
		conds = append(conds, model.CondicaoPagamento{Descricao: c.Descricao, Dias: c.Dias, Ativo: true, Ordem: i + 1})
	}
	for _, rows := range []any{&gases, &caps, &medidas, &conds} {
		if err := r.Catalogo.Seed(ctx, rows); err != nil {
			return rel, fmt.Errorf("seed catálogo: %w", err)
		}
	}
	rel.Catalogo = len(gases) + len(caps) + len(medidas) + len(conds)

	for _, us := range d.Unidades {
		u, err := r.Unidades.FindByNome(ctx, us.Nome)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			u = &model.Unidade{Nome: us.Nome, Ativo: true, Telefone: texto("(00) 0000-0000"), Site: texto("www.maqgases.com.br")}
		case err != nil:
			return rel, fmt.Errorf("seed unidade %s: %w", us.Nome, err)
		}
		u.RazaoSocial = texto(us.RazaoSocial)
		u.Endereco = texto(us.Endereco)
		u.Email = texto(us.Email)
		if err := r.Unidades.Save(ctx, u); err != nil {
			return rel, fmt.Errorf("seed unidade %s: %w", us.Nome, err)
		}
		rel.Unidades++

		id := u.ID
		usuario := &model.Usuario{
			Nome:      "Comercial " + us.Cidade,
			Email:     strings.ToLower(us.Email),
			Senha:     senhaHash,
			Role:      model.RoleUnidade,
			UnidadeID: &id,
			Ativo:     true,
		}
		if err := r.Usuarios.Upsert(ctx, usuario); err != nil {
			return rel, fmt.Errorf("seed usuário %s: %w", us.Email, err)
		}
		rel.Usuarios++
	}

	admin := &model.Usuario{
		Nome:  d.Admin.Nome,
		Email: strings.ToLower(d.Admin.Email),
		Senha: senhaHash,
		Role:  model.RoleSuperadmin,
		Ativo: true,
	}
	if err := r.Usuarios.Upsert(ctx, admin); err != nil {
		return rel, fmt.Errorf("seed admin: %w", err)
	}
	rel.Usuarios++

	log.Info().Int("catalogo", rel.Catalogo).Int("unidades", rel.Unidades).Int("usuarios", rel.Usuarios).Msg("seed concluído")
	return rel, nil
}

func texto(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
