package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"teardown-leads/internal/bootstrap"
	"teardown-leads/internal/config"
	apihttp "teardown-leads/internal/http"
	"teardown-leads/internal/service"
)

func main() {
	issueFor := flag.String("issue-token", "", "emite un token para el cliente indicado y termina")
	scopes := flag.String("scopes", service.ScopeRead, "scopes del token, separados por coma")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)
	}

	if *issueFor != "" {
		if jwtSvc == nil {
			log.Fatal("API_JWT_SECRET is required to issue tokens")
		}
		tok, err := jwtSvc.Issue(*issueFor, strings.Split(*scopes, ","))
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println(tok.AccessToken)
		return
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	if jwtSvc == nil {
		logger.Warn("jwt secret not configured, api is open")
	}

	scoringHandler := apihttp.NewScoringHandler(app.Scorer, app.Enricher, logger)
	listingHandler := apihttp.NewListingHandler(app.Pipeline, app.Listings, app.Classifications, app.Runs, logger)
	router := apihttp.NewRouter(logger, jwtSvc, cfg.CORSAllowedOrigins, scoringHandler, listingHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
