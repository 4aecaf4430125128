package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travelagent/config"
	"travelagent/handlers"
	"travelagent/middleware"
	"travelagent/routes"
	"travelagent/services/intent"
	"travelagent/services/search"
	"travelagent/services/settlement"
	"travelagent/services/workflow"
	"travelagent/store"
	"travelagent/stream"
	"travelagent/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Thread store backend.
	var threadStore store.ThreadStore
	switch config.AppConfig.ThreadStore {
	case "redis":
		utils.InitThreadCache()
		ttl := time.Duration(config.AppConfig.ThreadTTLMinutes) * time.Minute
		threadStore = store.NewRedisThreadStore(utils.GetThreadCacheClient(), ttl)
		logger.Sugar().Info("main: using redis thread store")
	default:
		threadStore = store.NewMemoryThreadStore()
		logger.Sugar().Info("main: using in-memory thread store")
	}

	// Intent extraction collaborator.
	var extractor intent.Extractor = intent.NewRulesExtractor()
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		extractor = intent.NewGeminiExtractor(key)
		logger.Sugar().Info("main: using gemini intent extractor")
	}

	// Search collaborator.
	searchTimeout := time.Duration(config.AppConfig.SearchTimeoutSecs) * time.Second
	var flights search.FlightSearcher
	var hotels search.HotelSearcher
	if url := config.AppConfig.SearchAPIURL; url != "" {
		provider := search.NewHTTPProvider(url, config.AppConfig.SearchAPIKey, searchTimeout, logger)
		flights, hotels = provider, provider
	} else {
		provider := search.NewStaticProvider()
		flights, hotels = provider, provider
		logger.Sugar().Info("main: no search provider configured, using static catalog")
	}

	// Settlement collaborator.
	settlementClient := settlement.NewHTTPClient(
		config.AppConfig.SettlementURL,
		time.Duration(config.AppConfig.SettlementTimeoutSecs)*time.Second,
		logger,
	)

	engine := workflow.New(workflow.Options{
		Store:           threadStore,
		Extractor:       extractor,
		Flights:         flights,
		Hotels:          hotels,
		Settlement:      settlementClient,
		Logger:          logger,
		SpendCeilingUSD: decimal.NewFromFloat(config.AppConfig.SpendCeilingUSD),
		SwapBufferPct:   decimal.NewFromFloat(config.AppConfig.SwapBufferPct),
		CallTimeout:     searchTimeout,
	})

	streamDelay := time.Duration(config.AppConfig.StreamDelayMS) * time.Millisecond
	pacing := stream.Pacing{
		AfterMetadata: 10 * time.Millisecond,
		BeforeEnd:     streamDelay,
	}

	threadHandler := handlers.NewThreadHandler(threadStore, logger)
	runHandler := handlers.NewRunHandler(engine, pacing, logger)

	handlerBundle := &handlers.HandlerBundle{
		CreateThread:  threadHandler.CreateThread,
		ThreadHistory: threadHandler.ThreadHistory,
		SearchThreads: threadHandler.SearchThreads,
		StreamRun:     runHandler.StreamRun,

		Status:           handlers.Status,
		AssistantsSearch: handlers.AssistantsSearch,
		Info:             handlers.Info,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
