package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"doukeeper/config"
	"doukeeper/internal/pkg/cache"
	"doukeeper/internal/pkg/database"
	"doukeeper/internal/pkg/logger"
	"doukeeper/internal/pkg/token"

	"doukeeper/internal/api/dashboard"
	"doukeeper/internal/api/distribution"
	"doukeeper/internal/api/event"
	"doukeeper/internal/api/router"
	"doukeeper/internal/api/snapshot"
	"doukeeper/internal/api/user"
	"doukeeper/internal/api/work"
	"doukeeper/internal/repository/distributionrepo"
	"doukeeper/internal/repository/eventrepo"
	"doukeeper/internal/repository/userrepo"
	"doukeeper/internal/repository/workrepo"
	"doukeeper/internal/service/eventservice"
	"doukeeper/internal/service/ledgerservice"
	"doukeeper/internal/service/userservice"
)

// @title DouKeeper API
// @version 1.0
// @description Ledger de estoque para criadores de doujinshi: obras, registros de distribuição, eventos e agregados.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, as variáveis essenciais podem estar no ambiente do
	// sistema (ex: Docker), então apenas avisamos.
	if err := godotenv.Load(); err != nil {
		stdlog.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// --- Infraestrutura ---

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	jwtExpiry := time.Hour * time.Duration(cfg.JWTExpiryHours)
	tokenSvc := token.NewService(cfg.JWTSecretKey, jwtExpiry)

	// --- Injeção de Dependências: Repository -> Service -> Handler ---

	workRepo := workrepo.NewWorkRepository(db, cfg.DBTimeout, log)
	distRepo := distributionrepo.NewDistributionRepository(db, cfg.DBTimeout, log)
	eventRepo := eventrepo.NewEventRepository(db, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	ledgerSvc := ledgerservice.NewService(workRepo, distRepo, eventRepo, cacheClient, cfg.CacheTimeout, log)
	eventSvc := eventservice.NewService(eventRepo, log)
	userSvc := userservice.NewService(userRepo, tokenSvc)
	log.Debug("Serviços inicializados.", nil)

	deps := router.Deps{
		WorkHandler:         work.NewHandler(ledgerSvc, log),
		DistributionHandler: distribution.NewHandler(ledgerSvc, log),
		EventHandler:        event.NewHandler(eventSvc, log),
		DashboardHandler:    dashboard.NewHandler(ledgerSvc, log),
		SnapshotHandler:     snapshot.NewHandler(ledgerSvc, log),
		UserHandler:         user.NewHandler(userSvc, log),
		TokenSvc:            tokenSvc,
		CacheClient:         cacheClient,
		RateLimit:           cfg.RateLimitMaxRequests,
		RatePeriod:          cfg.RateLimitPeriod,
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Execução e Graceful Shutdown ---

	go func() {
		log.Info("Servidor DouKeeper ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
