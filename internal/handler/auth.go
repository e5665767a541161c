package handler

import (
	"errors"
	"net/http"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthHandler issues access tokens. Failed attempts are logged with the
// client IP; the login route is also rate limited per IP.
type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuário
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciais"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apierror.ErrUnauthenticated) {
			log.Warn().Str("email", req.Email).Str("ip", c.ClientIP()).Msg("login recusado")
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
