package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courtbook/courtbook/config"
	"github.com/courtbook/courtbook/config/db"
	redisclient "github.com/courtbook/courtbook/config/redis"
	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/metrics"
	"github.com/courtbook/courtbook/middlewares/cors"
	"github.com/courtbook/courtbook/middlewares/tenant"
	"github.com/courtbook/courtbook/routes"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()
	defer redisclient.CloseRedis()

	if err := db.Migrate(context.Background()); err != nil {
		logger.ErrorLogger.Errorf("Migration failed: %v", err)
		os.Exit(1)
	}

	metrics.Register()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())
	r.Use(tenant.TenantMiddleware())

	routes.RegisterAuthRoutes(r)
	routes.RegisterAvailabilityRoutes(r)
	routes.RegisterBookingRoutes(r)
	routes.RegisterManagerRoutes(r)
	routes.RegisterPaymentRoutes(r)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Errorf("Server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.InfoLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Forced shutdown: %v", err)
	}
	logger.InfoLogger.Info("Server exited")
}
