package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"perceptual-diff/internal/env"
	"perceptual-diff/internal/retry"
	"perceptual-diff/internal/runnable"
	"perceptual-diff/internal/storage"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	var debug bool
	var backend string
	flag.BoolVar(&debug, "debug", env.OrDefaultValue("DEBUG", false), "Human readable logs and pprof endpoints")
	flag.StringVar(&backend, "storage-backend", env.OrDefaultValue("STORAGE_BACKEND", ""), "Storage that baselineURL and targetURL are read from (file or s3), empty to accept uploads only")
	flag.Parse()
	runnable.Debug = debug

	ctx := context.Background()

	var s storage.Storage
	if backend != "" {
		retryOn, err := retry.ParseOn(env.OrDefaultValue("FETCH_RETRY_ON", retry.DefaultOn))
		if err != nil {
			log.Fatalf("Failed to parse FETCH_RETRY_ON: %v", err)
		}
		s, err = storage.New(ctx, storage.Config{
			Backend: backend,
			File:    storage.FileConfig{Directory: env.OrDefaultValue("DIRECTORY", ".")},
			S3:      storage.S3Config{Bucket: os.Getenv("S3_BUCKET")},
			HTTP: storage.HTTPConfig{
				Timeout:    env.OrDefaultValue("FETCH_TIMEOUT", 10*time.Second),
				MaxRetries: env.OrDefaultValue("FETCH_MAX_RETRIES", uint(3)),
				RetryOn:    retryOn,
			},
		})
		if err != nil {
			log.Fatalf("Failed to create storage: %v", err)
		}
	}

	server := runnable.NewServer(s)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
