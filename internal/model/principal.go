package model

// Principal is the authenticated caller as seen by services.
// It is built from verified token claims, never from the request body.
type Principal struct {
	UsuarioID int64
	Nome      string
	Role      string
	UnidadeID *int64
}

// PrincipalSistema is used by background jobs that act on behalf of the
// system rather than a user (e.g. the email delivery worker).
func PrincipalSistema() *Principal {
	return &Principal{Nome: "sistema", Role: RoleSuperadmin}
}

// Elevado reports whether the principal is exempt from branch ownership checks.
func (p *Principal) Elevado() bool {
	return p != nil && p.Role == RoleSuperadmin
}

// PodeAcessar reports whether the principal may act on records owned by unidadeID.
func (p *Principal) PodeAcessar(unidadeID int64) bool {
	if p == nil {
		return false
	}
	if p.Elevado() {
		return true
	}
	return p.UnidadeID != nil && *p.UnidadeID == unidadeID
}
