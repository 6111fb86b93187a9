package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/resteretter/mailcow-monitor/internal/monitor"
	"github.com/resteretter/mailcow-monitor/internal/platform/config"
	firestoreclient "github.com/resteretter/mailcow-monitor/internal/platform/firestore"
	apirouter "github.com/resteretter/mailcow-monitor/internal/platform/http"
	"github.com/resteretter/mailcow-monitor/internal/platform/mailcow"
	"github.com/resteretter/mailcow-monitor/internal/platform/metrics"
	"github.com/resteretter/mailcow-monitor/internal/repository"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	var source mailcow.Source
	if cfg.DemoMode {
		source = mailcow.NewDemoSource()
		log.Println("demo mode enabled: serving synthetic mailbox data")
	} else {
		source = mailcow.New(nil, mailcow.Config{
			BaseURL:   cfg.MailcowAPIURL,
			APIKey:    cfg.MailcowAPIKey,
			Timeout:   cfg.RequestTimeout,
			VerifySSL: cfg.MailcowVerifySSL,
		})
	}

	var persist monitor.Persister
	var historyRepo *repository.HistoryRepository
	if cfg.PersistenceEnabled() {
		firestoreClient, credsSource, err := firestoreclient.New(ctx, cfg)
		if err != nil {
			log.Fatalf("firestore init: %v", err)
		}
		defer firestoreClient.Close()

		if err := firestoreclient.Ping(ctx, firestoreClient); err != nil {
			log.Fatalf("firestore ping: %v", err)
		}
		log.Printf("connected to Firestore project %s using %s credentials", cfg.FirebaseProjectID, credsSource)

		historyRepo = repository.NewHistoryRepository(firestoreClient)
		persist = historyRepo
	}

	store := monitor.NewStore()
	history := monitor.NewHistory(cfg.HistoryRetention)
	collector := monitor.NewCollector(source, store, history, persist, metrics.New(nil), cfg.PollInterval)

	if historyRepo != nil {
		points, err := historyRepo.LoadRecent(ctx, cfg.HistoryRetention)
		if err != nil {
			log.Printf("warm start skipped: %v", err)
		} else {
			collector.WarmStart(points)
		}
	}

	if err := collector.Start(ctx); err != nil {
		log.Fatalf("collector start: %v", err)
	}

	router := apirouter.NewRouter(store, history, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on :%s", cfg.Port)

	<-ctx.Done()
	stop()

	collector.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("server exited")
}
