package app

import (
	"database/sql"
	"net/http"

	"go-faculty-leave/internal/authz"
	"go-faculty-leave/internal/balance"
	"go-faculty-leave/internal/config"
	"go-faculty-leave/internal/employee"
	"go-faculty-leave/internal/leave"
	"go-faculty-leave/internal/messaging/kafka"
	"go-faculty-leave/internal/middleware"
	"go-faculty-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	balanceRepo := balance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Authorization ---
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return err
	}
	guard := authz.NewGuard(enforcer, logger)

	// --- Services ---
	ledger := balance.NewLedger(balanceRepo, logger)
	employeeService := employee.NewService(employeeRepo, ledger, guard, rdb, logger)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, ledger, employeeService, guard, outboxRepo, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)

	router.Use(middleware.RequestID())
	router.GET("/healthz",
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
		},
	)

	protected := []gin.HandlerFunc{
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.ExtractUserID(),
		middleware.ContextLogger(logger),
		middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, protected...)
		leave.RegisterRoutes(api, leaveHandler, rdb, protected...)
	}

	return nil
}
