package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"hotwallet_monitor/api"
	"hotwallet_monitor/internal/client"
	"hotwallet_monitor/internal/config"
	"hotwallet_monitor/internal/repository"
	"hotwallet_monitor/internal/service"
	"hotwallet_monitor/internal/utils"
	"hotwallet_monitor/pkg/blockchain"
	"hotwallet_monitor/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// .env is optional; chain endpoint templates reference e.g. ${INFURA_KEY}.
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		logrus.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route slog users (go-ethereum among them) through the same core.
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.String("path", cfgPath), zap.Error(err))
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	ctx := context.Background()

	walletRepo, err := repository.NewSQLiteWalletRepository(ctx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize wallet repository", zap.Error(err))
	}
	defer walletRepo.Close()

	provider := blockchain.NewEVMClientProvider(cfg, zapLogger)
	defer provider.Close()

	mexcTimeout := time.Duration(cfg.PriceSources.MEXC.RequestTimeoutMillis) * time.Millisecond
	mexcClient := client.NewMEXCClient(cfg.PriceSources.MEXC.BaseURL, mexcTimeout, zapLogger)

	geckoTimeout := time.Duration(cfg.PriceSources.CoinGecko.RequestTimeoutMillis) * time.Millisecond
	geckoClient := client.NewCoinGeckoClient(cfg.PriceSources.CoinGecko.BaseURL, geckoTimeout, zapLogger)

	priceSvc := service.NewPriceService(mexcClient, geckoClient, zapLogger)
	balanceSvc := service.NewBalanceService(provider, priceSvc, cfg, zapLogger)
	coinSvc := service.NewCoinService(walletRepo, balanceSvc, zapLogger)
	zapLogger.Info("Services initialized")

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(utils.ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	walletHandler := api.NewWalletHandler(coinSvc, balanceSvc, zapLogger)
	api.RegisterWalletRoutes(router, walletHandler)

	if cfg.Swagger.Enabled {
		api.RegisterSwaggerRoutes(router, cfg.Swagger.Path)
		zapLogger.Info("Swagger UI enabled", zap.String("path", cfg.Swagger.Path+"/index.html"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
