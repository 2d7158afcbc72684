package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segyhp/pledge-callcenter/internal/app"
	"github.com/segyhp/pledge-callcenter/internal/handler"
	"github.com/segyhp/pledge-callcenter/internal/service"
	"github.com/segyhp/pledge-callcenter/pkg/metrics"
	"github.com/segyhp/pledge-callcenter/pkg/response"
	"github.com/sirupsen/logrus"
)

func main() {
	a, err := app.New("callcenter-api")
	if err != nil {
		logrus.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	cfg := a.Config

	callCenterService := service.NewCallCenterService(a.Repos, a.Dispatcher, a.Metrics, cfg, a.Log)
	callCenterHandler := handler.NewCallCenterHandler(callCenterService)
	healthHandler := handler.NewHealthHandler(a.DB, a.Redis, cfg.Health.Timeout)

	router := setupRoutes(callCenterHandler, healthHandler, a.Metrics, a.Log)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		a.Log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.Log.Errorf("Server forced to shutdown: %v", err)
	}

	a.Log.Info("Server exited")
}

func setupRoutes(callCenterHandler *handler.CallCenterHandler, healthHandler *handler.HealthHandler, m *metrics.Metrics, log logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware, response.LoggingMiddleware(log), m.Middleware)

	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	callCenterHandler.RegisterRoutes(router)

	return router
}
