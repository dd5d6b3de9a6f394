// Tripkeeper sync server:
// registration, sign-in and token refresh for account owners;
// authoritative storage for trip, expense, vehicle and company_link records;
// full-state pulls and per-record pushes from offline-first clients;
// named procedures that must run against authoritative state.

//POST   /api/v1/auth/register            # public
//POST   /api/v1/auth/login               # public
//POST   /api/v1/auth/refresh             # public
//GET    /api/v1/records/{entityType}     # auth
//PUT    /api/v1/records/{entityType}/{id}  # auth
//DELETE /api/v1/records/{entityType}/{id}  # auth
//POST   /api/v1/rpc/{name}               # auth

package api

import (
	healthAPI "tripkeeper/internal/app/server/api/http/health"
	"tripkeeper/internal/app/server/api/http/middleware"
	"tripkeeper/internal/app/server/api/http/middleware/auth"
	"tripkeeper/internal/app/server/api/http/middleware/logger"
	recordAPI "tripkeeper/internal/app/server/api/http/record"
	rpcAPI "tripkeeper/internal/app/server/api/http/rpc"
	userAPI "tripkeeper/internal/app/server/api/http/user"
	"tripkeeper/internal/domain/company"
	"tripkeeper/internal/domain/record"
	"tripkeeper/internal/domain/session"
	"tripkeeper/internal/domain/user"
	"tripkeeper/internal/infrastructure/storage/postgres"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	User   *userAPI.Handler
	Record *recordAPI.Handler
	RPC    *rpcAPI.Handler
}

// New builds a *chi.Mux with every operation registered through huma.
func New(storage *postgres.Storage, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Tripkeeper API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(storage, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Record.SetupRoutes(API)
	h.RPC.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage, log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	userRepo := postgres.NewUserRepository(storage, log)
	userService := user.NewService(userRepo, user.NewPasswordValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	userHandler := userAPI.NewHandler(userService, sessionService, log, middlewares.GetAllAndClear())

	recordRepo := postgres.NewRecordRepository(storage, log)
	recordService := record.NewService(recordRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	recordHandler := recordAPI.NewHandler(recordService, log, middlewares.GetAllAndClear())

	companyRepo := postgres.NewCompanyRepository(storage, log)
	companyService := company.NewService(companyRepo, log)
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	rpcHandler := rpcAPI.NewHandler(companyService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		User:   userHandler,
		Record: recordHandler,
		RPC:    rpcHandler,
	}
}
