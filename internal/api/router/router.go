package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "doukeeper/docs" // Documentação gerada pelo swag

	"doukeeper/internal/api/dashboard"
	"doukeeper/internal/api/distribution"
	"doukeeper/internal/api/event"
	"doukeeper/internal/api/snapshot"
	"doukeeper/internal/api/user"
	"doukeeper/internal/api/work"
	"doukeeper/internal/pkg/cache"
	"doukeeper/internal/pkg/middleware"
)

// Deps agrupa os Handlers e serviços de infraestrutura que o roteador precisa.
type Deps struct {
	WorkHandler         *work.Handler
	DistributionHandler *distribution.Handler
	EventHandler        *event.Handler
	DashboardHandler    *dashboard.Handler
	SnapshotHandler     *snapshot.Handler
	UserHandler         *user.Handler

	TokenSvc    middleware.TokenService
	CacheClient cache.Client
	RateLimit   int
	RatePeriod  time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(deps Deps) http.Handler {

	// ServeMux padrão do net/http; a extração de IDs fica nos handlers.
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(deps.TokenSvc)

	// --- 1. Rotas públicas ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)
	mux.HandleFunc("/v1/register", deps.UserHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", deps.UserHandler.LoginUserHandler)

	// --- 2. Rotas do ledger (autenticadas, escopadas por usuário) ---
	mux.HandleFunc("/v1/works", auth(deps.WorkHandler.WorksHandler))
	mux.HandleFunc("/v1/works/", auth(deps.WorkHandler.WorkByIDHandler)) // inclui /v1/works/{id}/restock

	mux.HandleFunc("/v1/distributions", auth(deps.DistributionHandler.DistributionsHandler))
	mux.HandleFunc("/v1/distributions/", auth(deps.DistributionHandler.DistributionByIDHandler))

	mux.HandleFunc("/v1/events", auth(deps.EventHandler.EventsHandler))
	mux.HandleFunc("/v1/events/", auth(deps.EventHandler.EventByIDHandler))

	mux.HandleFunc("/v1/dashboard", auth(deps.DashboardHandler.DashboardHandler))
	mux.HandleFunc("/v1/snapshot", auth(deps.SnapshotHandler.SnapshotHandler))

	// --- 3. Middlewares globais ---
	rateLimited := middleware.RateLimiter(deps.CacheClient, deps.RateLimit, deps.RatePeriod)(mux)

	return rateLimited
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
