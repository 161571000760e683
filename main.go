package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	utils "popreel/internal"
	"popreel/internal/api"
	"popreel/internal/auth"
	"popreel/internal/config"
	"popreel/internal/credential"
	"popreel/internal/logger"
	"popreel/internal/s3"
	"popreel/internal/service"
	"popreel/internal/store"
	"popreel/internal/user"
	"popreel/internal/video"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	uploadConfig, err := config.LoadUploadConfig()
	if err != nil {
		log.Fatalf("🚨 Failed to load upload config: %v", err)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("🚨 Failed to open database: %v", err)
	}
	defer db.Close()

	userService := user.NewService(db)
	userHandler := user.NewHandler(userService)
	videoHandler := video.NewHandler(video.NewService(db, cfg.ImageKitURLEndpoint, uploadConfig.Upload.Transformation))
	credentialHandler := credential.NewHandler(cfg, uploadConfig.Upload)
	requireSession := auth.SessionMiddleware(userService)

	router := mux.NewRouter()
	router.Use(requestLogger)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	apiRouter := router.PathPrefix("/api").Subrouter()

	// Auth
	if cfg.RequireAuthForUpload {
		apiRouter.Handle("/auth/imagekit-auth", requireSession(http.HandlerFunc(credentialHandler.HandleIssue))).Methods(http.MethodGet)
	} else {
		apiRouter.HandleFunc("/auth/imagekit-auth", credentialHandler.HandleIssue).Methods(http.MethodGet)
	}
	apiRouter.HandleFunc("/auth/register", userHandler.HandleRegister).Methods(http.MethodPost)
	apiRouter.HandleFunc("/auth/login", userHandler.HandleLogin).Methods(http.MethodPost)
	apiRouter.Handle("/auth/me", requireSession(http.HandlerFunc(userHandler.HandleMe))).Methods(http.MethodGet)

	// Videos
	apiRouter.Handle("/video", requireSession(http.HandlerFunc(videoHandler.HandleCreate))).Methods(http.MethodPost)
	apiRouter.HandleFunc("/videos", videoHandler.HandleFeed).Methods(http.MethodGet)
	apiRouter.HandleFunc("/videos/{id}", videoHandler.HandleGet).Methods(http.MethodGet)

	// Posters
	if cfg.S3Bucket != "" {
		s3Client, err := s3.NewClient(context.Background(), cfg.S3Region, cfg.S3Bucket, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.S3Endpoint)
		if err != nil {
			log.Fatalf("🚨 Failed to create S3 client: %v", err)
		}
		posterAPI := api.NewPosterAPI(service.NewPosterService(s3Client, uploadConfig.Poster, cfg.PosterBaseURL))
		apiRouter.Handle("/posters/{name}", requireSession(http.HandlerFunc(posterAPI.HandleUpload))).Methods(http.MethodPost)
		apiRouter.HandleFunc("/posters/{name}", posterAPI.HandleGet).Methods(http.MethodGet)
	} else {
		log.Println("S3_BUCKET not set, poster routes disabled ⚠️")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go purgeExpiredSessions(janitorCtx, db, time.Hour)

	go func() {
		log.Printf("Starting server on port %s 🚀", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start 🚨: %v", err)
		}
	}()

	signal.Notify(utils.QuitChan, syscall.SIGINT, syscall.SIGTERM)
	<-utils.QuitChan

	log.Println("Shutting down server... 🛑")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown 🚨: %v", err)
	}

	log.Println("Server exited")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func purgeExpiredSessions(ctx context.Context, db *store.Store, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := db.DeleteExpiredSessions(ctx, now)
			if err != nil {
				logger.Errorf("purge sessions: %v", err)
				continue
			}
			if n > 0 {
				logger.Infof("purged %d expired sessions", n)
			}
		}
	}
}
