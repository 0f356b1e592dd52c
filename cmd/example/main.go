package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"writer-example/handler"
	"writer-example/internal/domain"
	"writer-example/internal/integrations/writer"
	"writer-example/internal/repository"
	"writer-example/internal/usecase"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	// ---- Configuration (read only here) ----
	apiKey := domain.NewCredential(os.Getenv("WRITER_API_KEY"))
	baseURL := os.Getenv("WRITER_BASE_URL")
	transcriptTable := os.Getenv("TRANSCRIPT_TABLE")

	// ---- Clients ----
	var clientOpts []writer.Option
	if baseURL != "" {
		clientOpts = append(clientOpts, writer.WithBaseURL(baseURL))
	}
	writerClient := writer.NewClient(apiKey, clientOpts...)

	var exampleOpts []usecase.ExampleOption
	if transcriptTable != "" {
		if recorder := newRecorder(ctx, transcriptTable); recorder != nil {
			exampleOpts = append(exampleOpts, usecase.WithRecorder(recorder))
		}
	}

	example, err := usecase.NewChatExample(writerClient, exampleOpts...)
	if err != nil {
		slog.Error("failed to create chat example", "err", err)
		return
	}

	console, err := handler.NewConsole(example, os.Stdout, os.Stderr)
	if err != nil {
		slog.Error("failed to create console", "err", err)
		return
	}
	console.Print(ctx)
}

// newRecorder returns nil when AWS is not configured; transcripts are optional.
func newRecorder(ctx context.Context, table string) *repository.Client {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Warn("transcripts disabled: failed to load AWS config", "err", err)
		return nil
	}
	recorder, err := repository.New(awsdynamodb.NewFromConfig(cfg), table)
	if err != nil {
		slog.Warn("transcripts disabled", "err", err)
		return nil
	}
	return recorder
}
