// Package main is the entry point for the wishboard server.
//
// main stays minimal: read configuration from env vars, build the logger
// and the optional uploader, hand everything to internal/server. All real
// logic lives in the imported packages so it is testable without a
// process.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/ayakodama/wishboard/internal/blob"
	"github.com/ayakodama/wishboard/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:      port,
		StaticDir: envOr("STATIC_DIR", "web/static"),
		Backend:   envOr("STORE_BACKEND", server.BackendSQLite),
		DBPath:    envOr("DB_PATH", "data/wishboard.db"),
		JSONPath:  envOr("JSON_DB_PATH", "data/wishboard.json"),
	}

	// The uploader is optional — without S3 config the board runs fine,
	// just without photo attachments.
	var uploader blob.Uploader
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		s3Store, err := blob.NewS3Store(context.Background(), blob.S3Config{
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			Region:        envOr("S3_REGION", "us-east-1"),
			Bucket:        bucket,
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		})
		if err != nil {
			logger.Error("failed to create S3 uploader", slog.String("error", err.Error()))
			os.Exit(1)
		}
		uploader = s3Store
	} else {
		logger.Warn("S3_BUCKET not set — photo uploads are disabled")
	}

	srv, err := server.New(cfg, logger, uploader)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
