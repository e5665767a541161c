package model

import "time"

// Catalog entities are global, editable reference data. Proposals copy their
// display text at creation time and never read them again for rendering.

// TipoGas.Tipo: "cilindro" | "liquido" | "ambos"
type TipoGas struct {
	ID        int64  `gorm:"primaryKey"`
	Nome      string `gorm:"uniqueIndex;not null"` // e.g. "OXIGÊNIO INDUSTRIAL"
	Tipo      string `gorm:"type:varchar(20);not null;default:'cilindro'"`
	Ativo     bool   `gorm:"not null;default:true"`
	Ordem     int    `gorm:"default:0"`
	CreatedAt time.Time
}

func (TipoGas) TableName() string { return "tipos_gas" }

// AtendeTipo reports whether the gas can be offered in a proposal of type t.
func (g *TipoGas) AtendeTipo(t TipoProposta) bool {
	return g.Tipo == "ambos" || g.Tipo == string(t)
}

type Capacidade struct {
	ID        int64  `gorm:"primaryKey"`
	Tamanho   string `gorm:"uniqueIndex;not null"` // e.g. "45 kg", "10 m³"
	Ativo     bool   `gorm:"not null;default:true"`
	Ordem     int    `gorm:"default:0"`
	CreatedAt time.Time
}

func (Capacidade) TableName() string { return "capacidades" }

type UnidadeMedida struct {
	ID        int64  `gorm:"primaryKey"`
	Nome      string `gorm:"uniqueIndex;not null"`
	Sigla     string `gorm:"not null"`
	Ativo     bool   `gorm:"not null;default:true"`
	Ordem     int    `gorm:"default:0"`
	CreatedAt time.Time
}

func (UnidadeMedida) TableName() string { return "unidades_medida" }

type CondicaoPagamento struct {
	ID        int64  `gorm:"primaryKey"`
	Descricao string `gorm:"uniqueIndex;not null"` // e.g. "Nota Fiscal / Boleto 14 dias"
	Dias      int    `gorm:"not null;default:0"`
	Ativo     bool   `gorm:"not null;default:true"`
	Ordem     int    `gorm:"default:0"`
	CreatedAt time.Time
}

func (CondicaoPagamento) TableName() string { return "condicoes_pagamento" }
