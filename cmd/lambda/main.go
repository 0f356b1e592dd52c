package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"writer-example/handler"
	"writer-example/internal/domain"
	"writer-example/internal/integrations/paramstore"
	"writer-example/internal/integrations/writer"
	"writer-example/internal/repository"
	"writer-example/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	apiKey := domain.NewCredential(os.Getenv("WRITER_API_KEY"))
	apiKeyParam := os.Getenv("WRITER_API_KEY_PARAM")
	baseURL := os.Getenv("WRITER_BASE_URL")
	transcriptTable := os.Getenv("TRANSCRIPT_TABLE")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// An unresolved key is not fatal: the run reports the upstream auth error.
	if apiKey.IsEmpty() && apiKeyParam != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		resolved, err := paramstore.ResolveAPIKey(ctx, ssmClient, apiKeyParam)
		if err != nil {
			slog.Warn("failed to resolve Writer API key", "param", apiKeyParam, "err", err)
		} else {
			apiKey = resolved
		}
	}

	// ---- Clients ----
	var clientOpts []writer.Option
	if baseURL != "" {
		clientOpts = append(clientOpts, writer.WithBaseURL(baseURL))
	}
	writerClient := writer.NewClient(apiKey, clientOpts...)

	var exampleOpts []usecase.ExampleOption
	if transcriptTable != "" {
		recorder, err := repository.New(awsdynamodb.NewFromConfig(cfg), transcriptTable)
		if err != nil {
			slog.Error("failed to create transcript recorder", "err", err)
			os.Exit(1)
		}
		exampleOpts = append(exampleOpts, usecase.WithRecorder(recorder))
	}

	// ---- Handler ----
	example, err := usecase.NewChatExample(writerClient, exampleOpts...)
	if err != nil {
		slog.Error("failed to create chat example", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(example)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
