package model

import "time"

// Roles carried by the authenticated principal.
const (
	RoleSuperadmin = "superadmin"
	RoleUnidade    = "unidade"
)

// Usuario stores system users. Role "unidade" users are scoped to UnidadeID;
// "superadmin" users see every branch.
type Usuario struct {
	ID        int64  `gorm:"primaryKey"`
	Nome      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Senha     string `gorm:"not null"` // bcrypt hash
	Role      string `gorm:"type:varchar(20);not null;default:'unidade'"`
	UnidadeID *int64 `gorm:"index"`
	Ativo     bool   `gorm:"not null;default:true"`
	CreatedAt time.Time

	Unidade *Unidade `gorm:"foreignKey:UnidadeID"`
}

func (Usuario) TableName() string { return "users" }
