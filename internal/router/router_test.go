package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propostas/internal/apierror"
	"propostas/internal/config"
	"propostas/internal/documento"
	"propostas/internal/dto"
	"propostas/internal/handler"
	"propostas/internal/model"
	"propostas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segredo = "test-secret"

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Senha != "segredo123" {
		return nil, fmt.Errorf("credenciais inválidas: %w", apierror.ErrUnauthenticated)
	}
	return &dto.LoginResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 3600}, nil
}

var _ service.AuthService = stubAuth{}

type stubCatalogo struct{}

func (stubCatalogo) Listar(_ context.Context, tipo string) (*dto.CatalogosResponse, error) {
	if tipo == "granel" {
		return nil, fmt.Errorf("tipo %q: %w", tipo, apierror.ErrInvalidInput)
	}
	return &dto.CatalogosResponse{TiposGas: []dto.TipoGasResponse{{ID: 1, Nome: "OXIGÊNIO", Tipo: "cilindro"}}}, nil
}

var _ service.CatalogoService = stubCatalogo{}

type stubPropostas struct {
	bruto     []byte
	principal *model.Principal
	excluidas []int64
}

func (s *stubPropostas) Criar(_ context.Context, p *model.Principal, req dto.CriarPropostaRequest, bruto []byte) (*dto.CriarPropostaResponse, error) {
	s.principal, s.bruto = p, bruto
	if _, err := service.ValidarTudo(&req); err != nil {
		return nil, err
	}
	return &dto.CriarPropostaResponse{ID: 1, Numero: "JOA-2025-00001"}, nil
}

func (s *stubPropostas) Obter(_ context.Context, _ *model.Principal, id int64) (*dto.PropostaResponse, error) {
	switch id {
	case 1:
		return &dto.PropostaResponse{ID: 1, Numero: "JOA-2025-00001", Status: "gerada"}, nil
	case 2:
		return nil, fmt.Errorf("proposta 2: %w", apierror.ErrForbidden)
	case 3:
		return nil, errors.New("pq: connection reset")
	}
	return nil, fmt.Errorf("proposta %d: %w", id, apierror.ErrNotFound)
}

func (s *stubPropostas) Listar(_ context.Context, _ *model.Principal, f dto.PropostaFilter) (*dto.PropostaListResponse, error) {
	return &dto.PropostaListResponse{Data: []dto.PropostaListItem{}, Page: f.Page, Limit: f.Limit}, nil
}

func (s *stubPropostas) Excluir(_ context.Context, _ *model.Principal, id int64) error {
	s.excluidas = append(s.excluidas, id)
	return nil
}

func (s *stubPropostas) SolicitarEnvio(_ context.Context, _ *model.Principal, id int64, _ dto.EnviarPropostaRequest) (string, error) {
	if id == 9 {
		return "", fmt.Errorf("rascunho: %w", apierror.ErrInvalidState)
	}
	return "job-1", nil
}

func (s *stubPropostas) MarcarEnviada(context.Context, int64, string) error { return nil }

var _ service.PropostaService = (*stubPropostas)(nil)

type stubDocs struct{}

func (stubDocs) Montar(context.Context, *model.Principal, int64) (*documento.Modelo, error) {
	return nil, nil
}

func (stubDocs) GerarPDF(_ context.Context, _ *model.Principal, id int64) (*dto.DocumentoPDF, error) {
	if id != 1 {
		return nil, fmt.Errorf("sem snapshot: %w", apierror.ErrInvalidState)
	}
	return &dto.DocumentoPDF{Numero: "JOA-2025-00001", NomeArquivo: "Proposta-JOA-2025-00001.pdf", Conteudo: []byte("%PDF-1.3 stub")}, nil
}

var _ service.DocumentoService = stubDocs{}

// ── Helpers ──────────────────────────────────────────────────────────────────

func novoServidor(t *testing.T, checks ...handler.Check) (*gin.Engine, *stubPropostas) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	props := &stubPropostas{}
	cfg := &config.Config{Env: "test", JWTSecret: segredo, CORSOrigins: "*"}
	svc := &Servicos{Auth: stubAuth{}, Catalogo: stubCatalogo{}, Propostas: props, Documentos: stubDocs{}}
	return New(cfg, svc, checks...), props
}

func tokenUnidade(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"usuario_id": 10, "nome": "Ana", "role": model.RoleUnidade, "unidade_id": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(segredo))
	require.NoError(t, err)
	return s
}

func do(r http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const corpoCilindro = `{"tipo":"cilindro","clienteNome":"Metalúrgica Oeste","clienteLocalEntrega":"Joaçaba",
"itens":[{"tipoGasId":1,"capacidadeId":1,"unidadeMedidaId":1,"valorUnitario":"50.00","condicaoPagamentoId":1}]}`

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRotasProtegidas(t *testing.T) {
	r, _ := novoServidor(t)
	for _, rota := range [][2]string{
		{http.MethodGet, "/v1/catalogos"},
		{http.MethodPost, "/v1/propostas"},
		{http.MethodGet, "/v1/propostas"},
		{http.MethodGet, "/v1/propostas/1"},
		{http.MethodGet, "/v1/propostas/1/pdf"},
		{http.MethodDelete, "/v1/propostas/1"},
	} {
		w := do(r, rota[0], rota[1], "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rota[1])
	}
}

func TestLogin(t *testing.T) {
	r, _ := novoServidor(t)

	w := do(r, http.MethodPost, "/v1/auth/login", "", []byte(`{"email":"ana@maqgases.com.br","senha":"segredo123"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/login", "", []byte(`{"email":"ana@maqgases.com.br","senha":"errada"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/v1/auth/login", "", []byte(`{"email":"nao-e-email","senha":"segredo123"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCriarProposta(t *testing.T) {
	r, props := novoServidor(t)
	tok := tokenUnidade(t)

	w := do(r, http.MethodPost, "/v1/propostas", tok, []byte(corpoCilindro))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"numero":"JOA-2025-00001"}`, w.Body.String())
	assert.Equal(t, "/v1/propostas/1", w.Header().Get("Location"))
	assert.Equal(t, corpoCilindro, string(props.bruto))
	require.NotNil(t, props.principal)
	assert.Equal(t, int64(10), props.principal.UsuarioID)
	assert.Equal(t, int64(1), *props.principal.UnidadeID)

	w = do(r, http.MethodPost, "/v1/propostas", tok, []byte(`{"tipo":"cilindro"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail":"Preencha os dados do cliente"}`, w.Body.String())

	w = do(r, http.MethodPost, "/v1/propostas", tok, []byte(`{nope`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidar(t *testing.T) {
	r, _ := novoServidor(t)
	tok := tokenUnidade(t)

	w := do(r, http.MethodPost, "/v1/propostas/validar", tok, []byte(`{"tipo":"liquido","clienteNome":"X","clienteLocalEntrega":"Y"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ValidacaoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valido)
	assert.Equal(t, "itens", resp.Etapa)
	assert.Equal(t, service.MsgSemItens, resp.Erro)

	w = do(r, http.MethodPost, "/v1/propostas/validar", tok, []byte(corpoCilindro))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valido)
	assert.Equal(t, "revisao", resp.Etapa)
}

func TestObterMapeiaErros(t *testing.T) {
	r, _ := novoServidor(t)
	tok := tokenUnidade(t)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/propostas/1", tok, nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/v1/propostas/2", tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/v1/propostas/7", tok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/v1/propostas/abc", tok, nil).Code)

	w := do(r, http.MethodGet, "/v1/propostas/3", tok, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestListar(t *testing.T) {
	r, _ := novoServidor(t)
	tok := tokenUnidade(t)

	w := do(r, http.MethodGet, "/v1/propostas", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"total":0,"page":1,"limit":20}`, w.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/v1/propostas?tipo=granel", tok, nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/v1/propostas?limit=1000", tok, nil).Code)
}

func TestPDF(t *testing.T) {
	r, _ := novoServidor(t)
	tok := tokenUnidade(t)

	w := do(r, http.MethodGet, "/v1/propostas/1/pdf", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Proposta-JOA-2025-00001.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusConflict, do(r, http.MethodGet, "/v1/propostas/5/pdf", tok, nil).Code)
}

func TestEnviarEExcluir(t *testing.T) {
	r, props := novoServidor(t)
	tok := tokenUnidade(t)

	w := do(r, http.MethodPost, "/v1/propostas/1/enviar", tok, []byte(`{"email":"compras@cliente.com.br"}`))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"job_id":"job-1"}`, w.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodPost, "/v1/propostas/1/enviar", tok, []byte(`{"email":"x"}`)).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/v1/propostas/9/enviar", tok, []byte(`{"email":"a@b.com"}`)).Code)

	w = do(r, http.MethodDelete, "/v1/propostas/4", tok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{4}, props.excluidas)
}

func TestCatalogos(t *testing.T) {
	r, _ := novoServidor(t)
	tok := tokenUnidade(t)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/v1/catalogos?tipo=cilindro", tok, nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(r, http.MethodGet, "/v1/catalogos?tipo=granel", tok, nil).Code)
}

func TestHealthEMetrics(t *testing.T) {
	ok := handler.Check{Nome: "db", Ping: func(context.Context) error { return nil }}
	fora := handler.Check{Nome: "redis", Ping: func(context.Context) error { return errors.New("down") }}

	r, _ := novoServidor(t, ok)
	w := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected"}`, w.Body.String())

	r, _ = novoServidor(t, ok, fora)
	w = do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"ok":false,"db":"connected","redis":"error"}`, w.Body.String())

	w = do(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
