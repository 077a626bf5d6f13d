package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	authhttp "github.com/amaljyothis2003/AkasaEats/auth-service/internal/http"
	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/identity"
	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/repository"
	"github.com/amaljyothis2003/AkasaEats/auth-service/internal/service"
	"github.com/amaljyothis2003/AkasaEats/pkg/authn"
	"github.com/amaljyothis2003/AkasaEats/pkg/config"
	"github.com/amaljyothis2003/AkasaEats/pkg/logger"
	"github.com/amaljyothis2003/AkasaEats/pkg/web"
)

type Config struct {
	Port            string
	ProjectID       string
	CredentialsFile string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	config.Load()
	return &Config{
		Port:            config.Get("PORT", "3001"),
		ProjectID:       config.Get("GOOGLE_CLOUD_PROJECT", ""),
		CredentialsFile: config.Get("GOOGLE_APPLICATION_CREDENTIALS", ""),
		AllowedOrigins:  config.GetList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func main() {
	cfg := loadConfig()

	log, err := logger.New("user-auth")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		log.Fatal("failed to connect to Firestore", zap.Error(err))
	}
	defer fsClient.Close()
	log.Info("connected to Firestore", zap.String("project", cfg.ProjectID))

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		log.Fatal("failed to initialize Firebase app", zap.Error(err))
	}
	fbAuth, err := fbApp.Auth(ctx)
	if err != nil {
		log.Fatal("failed to initialize Firebase auth", zap.Error(err))
	}

	repo := repository.NewFirestoreRepository(fsClient)
	ids := identity.NewFirebaseProvider(fbAuth)
	svc := service.NewAuthService(repo, ids, log)
	handler := authhttp.NewAuthHandler(svc, log)
	verifier := authn.NewFirebaseVerifier(fbAuth)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(web.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", web.Health("user-auth", "Auth service is running"))
	r.Route("/api/v1/auth", func(r chi.Router) {
		handler.Routes(r, authn.Middleware(verifier, log))
	})
	r.NotFound(web.NotFoundHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("auth service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down auth service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("auth service stopped")
}
