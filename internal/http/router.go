// Package http monta o roteador da API e os handlers transversais de
// autenticação e vínculos de representante.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/analise"
	"github.com/vitaltrack/bemestar/internal/cliente"
	"github.com/vitaltrack/bemestar/internal/config"
	"github.com/vitaltrack/bemestar/internal/departamento"
	"github.com/vitaltrack/bemestar/internal/empresa"
	"github.com/vitaltrack/bemestar/internal/filial"
	httpmiddleware "github.com/vitaltrack/bemestar/internal/http/middleware"
	"github.com/vitaltrack/bemestar/internal/jornada"
	"github.com/vitaltrack/bemestar/internal/mailer"
	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/service"
	"github.com/vitaltrack/bemestar/internal/usuario"
)

// Handler agrupa os serviços usados pelos handlers transversais.
type Handler struct {
	cfg                  *config.Config
	pool                 *pgxpool.Pool
	redis                *redis.Client
	authService          *service.AuthService
	usuarioDepartamentos *service.UsuarioDepartamentoService
	usuarioFiliais       *service.UsuarioFilialService
	publicLimiter        *httpmiddleware.RateLimiter
	authLimiter          *httpmiddleware.RateLimiter
}

// NewRouter devolve o roteador configurado com todos os módulos montados.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, mailerService *mailer.Service) (http.Handler, error) {
	queries := repo.New(pool)

	permissoes := service.NewPermissaoService(queries)

	h := &Handler{
		cfg:                  cfg,
		pool:                 pool,
		redis:                redisClient,
		authService:          authService,
		usuarioDepartamentos: service.NewUsuarioDepartamentoService(queries, permissoes),
		usuarioFiliais:       service.NewUsuarioFilialService(queries, permissoes),
		publicLimiter:        httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:          httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	empresaService := empresa.NewService(empresa.NewRepository(pool))
	representantesEmpresa := service.NewRepresentanteEmpresaService(queries, permissoes)
	empresaHandler := empresa.NewHandler(empresaService, representantesEmpresa)

	filialHandler := filial.NewHandler(filial.NewService(filial.NewRepository(pool)))
	departamentoHandler := departamento.NewHandler(departamento.NewService(departamento.NewRepository(pool)))

	usuarioService := usuario.NewService(
		usuario.NewRepository(pool),
		authService.Tokens(),
		queries,
		mailerService,
		0,
		cfg.AppBaseURL,
	)
	usuarioHandler := usuario.NewHandler(usuarioService)

	analiseClient := analise.New(analise.Config{URL: cfg.AnaliseURL, APIKey: cfg.AnaliseKey})
	if analiseClient == nil {
		log.Warn().Msg("serviço de análise não configurado; conclusão de jornadas ficará indisponível")
	}
	jornadaHandler := jornada.NewHandler(jornada.NewService(jornada.NewRepository(pool), analiseClient))

	clienteService := cliente.NewService(pool, authService.Tokens(), mailerService, 0, cfg.AppBaseURL)
	clienteHandler := cliente.NewHandler(clienteService)

	emailLogHandler := mailer.NewHandler(mailer.NewRepository(pool))

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/logout", h.Logout)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/esqueci-senha", h.ForgotPassword)
			auth.Get("/resetar-senha/validar", h.ValidateReset)
			auth.Post("/resetar-senha", h.ResetPassword)
			auth.Post("/definir-senha", h.DefinePassword)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.Tokens(), authService.Sessions()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		empresaHandler.RegisterRoutes(private)
		filialHandler.RegisterRoutes(private)
		departamentoHandler.RegisterRoutes(private)
		usuarioHandler.RegisterRoutes(private)
		jornadaHandler.RegisterRoutes(private)
		clienteHandler.RegisterRoutes(private)
		emailLogHandler.RegisterRoutes(private)

		h.registerVinculoRoutes(private)
	})

	return r, nil
}
