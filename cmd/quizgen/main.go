package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"quiztube/internal/adapter"
	"quiztube/internal/adapter/media"
	"quiztube/internal/adapter/quizgen"
	"quiztube/internal/adapter/whisper"
	"quiztube/internal/cache"
	"quiztube/internal/config"
	"quiztube/internal/database"
	"quiztube/internal/logger"
	"quiztube/internal/repository"
	"quiztube/internal/service"

	"go.uber.org/zap"
)

func main() {
	ownerID := flag.String("owner", "", "owner account id for the new quiz")
	videoURL := flag.String("url", "", "YouTube video URL to build a quiz from")
	flag.Parse()

	if *ownerID == "" || *videoURL == "" {
		fmt.Fprintln(os.Stderr, "usage: quizgen -owner <account-id> -url <youtube-url>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx := context.Background()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional; without it transcripts are simply re-transcribed.
	var transcriptCache *service.TranscriptCacheService
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, transcript caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			transcriptCache = service.NewTranscriptCacheService(
				adapter.NewRedisCacheAdapter(redisClient), log)
		}
	}

	downloader, err := media.NewYtDlpDownloader(cfg.Media, log)
	if err != nil {
		log.Fatal("Failed to set up media downloader", zap.Error(err))
	}

	transcriber, err := whisper.NewHTTPTranscriber(cfg.Whisper, log)
	if err != nil {
		log.Fatal("Failed to set up transcriber", zap.Error(err))
	}

	generator, err := quizgen.NewGeminiQuizGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Fatal("Failed to set up quiz generator", zap.Error(err))
	}

	quizService := service.NewQuizService(
		repository.NewQuizDatabaseAdapter(db),
		repository.NewTransactionManagerAdapter(db),
		downloader,
		transcriber,
		generator,
		transcriptCache,
		log,
	)

	result, err := quizService.CreateQuizFromURL(ctx, *ownerID, *videoURL)
	if err != nil {
		log.Fatal("Quiz creation failed", zap.Error(err))
	}

	log.Info("Quiz created",
		zap.String("quizID", result.ID),
		zap.String("title", result.Title),
		zap.Int("questions", len(result.Questions)))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("Failed to render result", zap.Error(err))
	}
	fmt.Println(string(out))
}
