package main

import (
	"context"
	"log"
	"net/http"

	"go-flight-reservation/config"
	"go-flight-reservation/internal/auth"
	"go-flight-reservation/internal/cache"
	"go-flight-reservation/internal/database"
	"go-flight-reservation/internal/handler"
	"go-flight-reservation/internal/ledger"
	"go-flight-reservation/internal/repository"
	"go-flight-reservation/internal/service"
	"go-flight-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()
	defer logger.Sync()

	// repositories
	customerRepo := repository.NewCustomerRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	capacityStore := repository.NewCapacityStore(pool)

	// ledgers and availability cache
	availabilityCache := cache.NewRedisAvailabilityCache(rdb)
	capacityLedger := ledger.NewCapacityLedger(capacityStore, availabilityCache, cfg.Auth.LockWait)
	tokenLedger := ledger.NewTokenLedger(customerRepo, cfg.Auth.LockWait)

	// authorization
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	authorizer := auth.NewAuthorizer(customerRepo, jwtManager)

	// services
	scheduleService := service.NewScheduleService(scheduleRepo, reservationRepo, capacityLedger, availabilityCache)
	reservationService := service.NewReservationService(authorizer, capacityLedger, tokenLedger, reservationRepo, scheduleRepo)
	customerService := service.NewCustomerService(customerRepo, tokenLedger, authorizer, jwtManager, cfg.Auth.BcryptCost)

	// 啟動預熱：Ledger 載入座位分配，之後以 Ledger 為權威狀態
	if err := scheduleService.WarmUp(context.Background()); err != nil {
		log.Fatalf("Failed to warm up capacity ledger: %v", err)
	}

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	handler.NewCustomerHandler(customerService).RegisterRoutes(router)
	handler.NewScheduleHandler(scheduleService).RegisterRoutes(router)
	handler.NewReservationHandler(reservationService).RegisterRoutes(router)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
