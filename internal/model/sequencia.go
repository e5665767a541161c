package model

import "time"

// PropostaSequencia tracks the last issued ordinal per number prefix per
// calendar year. Branches whose names fold to the same prefix share a row,
// so their numbers never collide. Bumped with an atomic upsert inside the
// creation transaction.
type PropostaSequencia struct {
	ID        int64  `gorm:"primaryKey"`
	Prefixo   string `gorm:"type:varchar(3);not null;uniqueIndex:idx_proposta_seq_prefixo_ano"`
	Ano       int    `gorm:"not null;uniqueIndex:idx_proposta_seq_prefixo_ano"`
	Ultimo    int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PropostaSequencia) TableName() string { return "proposta_sequencias" }
