package service

import (
	"context"
	"fmt"
	"time"

	"propostas/internal/apierror"
	"propostas/internal/config"
	"propostas/internal/dto"
	"propostas/internal/model"
	"propostas/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is used for every stored password hash.
const BcryptCost = 12

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("credenciais inválidas: %w", apierror.ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Senha)); err != nil {
		return nil, fmt.Errorf("credenciais inválidas: %w", apierror.ErrUnauthenticated)
	}

	token, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		Usuario: dto.UsuarioResponse{
			ID:        user.ID,
			Nome:      user.Nome,
			Email:     user.Email,
			Role:      user.Role,
			UnidadeID: user.UnidadeID,
		},
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"usuario_id": user.ID,
		"nome":       user.Nome,
		"role":       user.Role,
		"unidade_id": user.UnidadeID,
		"exp":        time.Now().Add(duration).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// HashSenha returns the bcrypt hash stored in users.senha.
func HashSenha(senha string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(senha), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
