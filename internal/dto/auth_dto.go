package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID        int64  `json:"id"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	UnidadeID *int64 `json:"unidadeId"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	Usuario     UsuarioResponse `json:"usuario"`
}
