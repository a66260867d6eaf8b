package server

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriscan/backend/config"
	"github.com/pageza/nutriscan/backend/internal/api"
	"github.com/pageza/nutriscan/backend/internal/database"
	"github.com/pageza/nutriscan/backend/internal/middleware"
	"github.com/pageza/nutriscan/backend/internal/service"
	"github.com/pageza/nutriscan/backend/internal/store"
)

// NewFromConfig wires the store backend, cache, recognizer, image offload and
// live feed selected by cfg and returns a server owning them.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	var closers []func() error
	fail := func(err error) (*Server, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	var entries store.EntryStore
	switch cfg.StoreBackend {
	case config.BackendFile:
		fs, err := store.NewFileStore(cfg.DiaryFile, nil)
		if err != nil {
			return fail(fmt.Errorf("failed to open diary file: %w", err))
		}
		log.Printf("Using file store at %s", fs.Path())
		entries = fs
	case config.BackendSQLite, config.BackendPostgres:
		db, err := database.New(cfg)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { return database.Close(db) })
		if err := database.RunMigrations(db); err != nil {
			return fail(err)
		}
		gs, err := store.NewGormStore(ctx, db, nil)
		if err != nil {
			return fail(err)
		}
		log.Printf("Using %s store", cfg.StoreBackend)
		entries = gs
	default:
		return fail(fmt.Errorf("unknown store backend %q", cfg.StoreBackend))
	}

	var writeLimiter gin.HandlerFunc
	if cfg.RedisEnabled() {
		redisClient, err := database.NewRedisClient(ctx, cfg)
		if err != nil {
			// Continue without the cache and rate limiting if Redis is not available
			log.Printf("Warning: Failed to connect to Redis, continuing without cache: %v", err)
		} else {
			closers = append(closers, redisClient.Close)
			entries = store.NewCachedStore(entries, redisClient, cfg.CacheTTL)
			if cfg.RateLimitPerMinute > 0 {
				writeLimiter = middleware.NewDiaryWriteRateLimiter(redisClient, cfg.RateLimitPerMinute).RateLimitMiddleware()
			}
		}
	}

	recognizer, err := newRecognizer(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	var images service.ImageUploader
	if cfg.S3BucketName != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		images = service.NewImageService(s3cfg)
		log.Printf("Offloading diary images to bucket %s", cfg.S3BucketName)
	}

	hub := service.NewRealtimeHub()
	closers = append(closers, func() error { hub.Close(); return nil })

	srv := New(cfg, api.Deps{
		Diary:        service.NewDiaryService(entries, images, hub),
		Recognizer:   recognizer,
		Hub:          hub,
		WriteLimiter: writeLimiter,
	})
	for _, fn := range closers {
		srv.OnShutdown(fn)
	}
	return srv, nil
}

func newRecognizer(ctx context.Context, cfg *config.Config) (service.Recognizer, error) {
	switch cfg.Recognizer {
	case config.RecognizerRekognition:
		awsCfg, err := config.LoadAWS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Printf("Using Rekognition recognizer in %s", cfg.AWSRegion)
		return service.NewRekognitionRecognizerFromConfig(awsCfg), nil
	case config.RecognizerMock, "":
		return service.NewMockRecognizer(cfg.RecognitionDelay), nil
	default:
		return nil, fmt.Errorf("unknown recognizer %q", cfg.Recognizer)
	}
}
