package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"memebot/internal/adapter/bing"
	"memebot/internal/adapter/httpapi"
	"memebot/internal/adapter/imaging"
	"memebot/internal/adapter/memory"
	"memebot/internal/adapter/openai"
	"memebot/internal/adapter/telegram"
	"memebot/internal/config"
	"memebot/internal/usecase/editor"
	"memebot/internal/usecase/image"
	"memebot/internal/usecase/search"
	"memebot/internal/usecase/suggest"
)

func main() {
	envFile := flag.String("env", ".env", "path to the env file")
	httpAddr := flag.String("http-addr", "", "address for the status API, overrides HTTP_ADDR")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	fonts, err := imaging.NewFontSet(cfg.FontDir)
	if err != nil {
		log.Fatalf("failed to load fonts: %v", err)
	}
	renderer := imaging.NewRenderer(fonts, imaging.Options{
		JPEGQuality:  cfg.JPEGQuality,
		MaxDimension: cfg.MaxImageDimension,
	})

	store := memory.NewStore()
	bingClient := bing.NewClient(cfg.SearchEndpoint, cfg.SearchAPIKey, cfg.HTTPTimeout, cfg.MaxDownloadBytes)

	searchSvc := search.NewService(store, bingClient, renderer, cfg)
	editorSvc := editor.NewService(store, renderer)

	var (
		suggestSvc *suggest.Service
		imgSvc     *image.Service
	)
	if cfg.OpenAIEnabled() {
		openAIClient := openai.NewClient(cfg.OpenAIKey, cfg.OpenAIURL, &http.Client{Timeout: 2 * time.Minute})
		suggestSvc = suggest.NewService(openAIClient, cfg)
		imgSvc = image.NewService(openAIClient, renderer, cfg)
	} else {
		log.Printf("OPENAI_API_KEY not set, /suggest and /generate are disabled")
		suggestSvc = suggest.NewService(nil, cfg)
		imgSvc = image.NewService(nil, renderer, cfg)
	}

	bot, err := telegram.NewBot(cfg, telegram.Services{
		Search:  searchSvc,
		Editor:  editorSvc,
		Suggest: suggestSvc,
		Images:  imgSvc,
		Fonts:   fonts.Names(),
	})
	if err != nil {
		log.Fatalf("failed to init telegram bot: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go pruneSessions(ctx, store, cfg.SessionTTL)

	if cfg.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.RegisterRoutes(store),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Printf("status API listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("status API stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("status API shutdown: %v", err)
			}
		}()
	}

	if err := bot.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Printf("shutdown: %v", err)
			return
		}
		log.Fatalf("bot stopped with error: %v", err)
	}
}

func pruneSessions(ctx context.Context, store *memory.Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(min(ttl, 10*time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Prune(ttl); n > 0 {
				log.Printf("pruned %d idle sessions", n)
			}
		}
	}
}
