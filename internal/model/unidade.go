package model

import "time"

// Unidade is a sales branch. Proposals and users belong to exactly one.
// Managed by the catalog screens; read-only from the proposal pipeline.
type Unidade struct {
	ID          int64  `gorm:"primaryKey"`
	Nome        string `gorm:"not null"` // e.g. "Joaçaba/SC"
	RazaoSocial *string
	Endereco    *string
	Telefone    *string
	Email       *string
	Site        *string
	Ativo       bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
}

// TableName pins the table name.
func (Unidade) TableName() string { return "unidades" }
