package router

import (
	"time"

	"propostas/internal/config"
	"propostas/internal/documento"
	"propostas/internal/handler"
	"propostas/internal/infra"
	"propostas/internal/middleware"
	"propostas/internal/model"
	"propostas/internal/repository"
	"propostas/internal/service"
	"propostas/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Servicos groups the services shared by the HTTP API and the workers.
type Servicos struct {
	Auth       service.AuthService
	Catalogo   service.CatalogoService
	Propostas  service.PropostaService
	Documentos service.DocumentoService
}

// NovosServicos wires repositories and services.
// Dependency graph: Service ← Repository ← DB; delivery jobs go to fila.
func NovosServicos(cfg *config.Config, db *gorm.DB, fila worker.Fila) (*Servicos, error) {
	loc := cfg.Location()
	templates, err := documento.TemplatesPadrao()
	if err != nil {
		return nil, err
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	unidadeRepo := repository.NewUnidadeRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)
	sequenciaRepo := repository.NewSequenciaRepository(db)
	propostaRepo := repository.NewPropostaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	alocador := service.NewAlocadorSequencia(sequenciaRepo, loc)
	enriquecedor := service.NewEnriquecedor(catalogoRepo, cfg.CatalogStrict)

	return &Servicos{
		Auth:     service.NewAuthService(usuarioRepo, cfg),
		Catalogo: service.NewCatalogoService(catalogoRepo),
		Propostas: service.NewPropostaService(
			propostaRepo, unidadeRepo, usuarioRepo, alocador, enriquecedor, worker.NewDispatcher(fila),
		),
		Documentos: service.NewDocumentoService(
			propostaRepo, unidadeRepo, usuarioRepo, templates,
			infra.NewAssetLoader(cfg.AssetsPath), infra.NewPDFRenderer(), cfg.CompanySite, loc,
		),
	}, nil
}

// New returns a configured Gin engine over the given services.
func New(cfg *config.Config, svc *Servicos, checks ...handler.Check) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	catalogosH := handler.NewCatalogosHandler(svc.Catalogo)
	propostasH := handler.NewPropostasHandler(svc.Propostas, svc.Documentos)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(checks...))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes: both roles reach every endpoint; branch scoping is
	// enforced by the services.
	v1 := r.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleSuperadmin, model.RoleUnidade),
	)
	{
		v1.GET("/catalogos", catalogosH.Listar)

		props := v1.Group("/propostas")
		{
			props.POST("/validar", propostasH.Validar)
			props.POST("", propostasH.Criar)
			props.GET("", propostasH.Listar)
			props.GET("/:id", propostasH.Obter)
			props.GET("/:id/pdf", propostasH.PDF)
			props.POST("/:id/enviar", propostasH.Enviar)
			props.DELETE("/:id", propostasH.Excluir)
		}
	}

	// Swagger UI outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
