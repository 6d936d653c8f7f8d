package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/config"
	"swachh_netra/internal/logger"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/notify"
	"swachh_netra/internal/routes"
	"swachh_netra/internal/services"
	"swachh_netra/internal/store"
	firestorestore "swachh_netra/internal/store/firestore"
	"swachh_netra/internal/store/gormstore"
	"swachh_netra/internal/telemetry"
)

const serviceName = "swachh-netra"

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	logger.Setup(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Format: cfg.LogFormat})

	shutdownTracing := telemetry.Setup(serviceName)

	ctx := context.Background()

	var fb *config.FirebaseClients
	if cfg.NeedsFirebase() {
		var err error
		if fb, err = config.InitFirebase(ctx, cfg); err != nil {
			logrus.WithError(err).Fatal("Failed to initialize Firebase")
		}
		defer fb.Close()
	}

	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		st = firestorestore.New(fb.Firestore)
	case config.BackendPostgres:
		db, err := config.InitDB(cfg.DB)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize database")
		}
		st = gormstore.New(db)
	default:
		logrus.WithField("backend", cfg.StoreBackend).Fatal("Unknown STORE_BACKEND")
	}

	var provider auth.Provider
	if cfg.AuthProvider == config.AuthFirebase {
		provider = auth.NewFirebaseProvider(fb.Auth)
	} else {
		provider = auth.NewLocalProvider(st, cfg.JWTSecret, cfg.JWTExpiry)
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.PushEnabled {
		notifier = notify.NewExpoNotifier()
	}

	svc := services.New(services.Deps{Store: st, Auth: provider, Notifier: notifier})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := routes.SetupRouter(svc)

	// Wrap with CORS and tracing
	handler := otelhttp.NewHandler(middleware.EnableCORS(cfg.CORSOrigins)(r), serviceName)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"store": cfg.StoreBackend,
			"auth":  cfg.AuthProvider,
			"push":  cfg.PushEnabled,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("Failed to flush traces")
	}
}
