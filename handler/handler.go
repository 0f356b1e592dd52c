package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"writer-example/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type UseCase interface {
	Run(ctx context.Context) (usecase.ExampleOutput, error)
}

// Handler exposes the example run behind API Gateway.
type Handler struct {
	uc UseCase
}

type runResponse struct {
	Answer string `json:"answer"`
	RunID  string `json:"runId"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func NewHandler(uc UseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	logger := slog.Default().With("correlationId", corrID)

	out, err := h.uc.Run(ctx)
	if err != nil {
		code, reason := string(usecase.ErrorRequestFailed), "unexpected_error"
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) {
			code, reason = string(ucErr.Code), ucErr.Reason
		}
		logger.Error("example run failed", "code", code, "reason", reason, "err", err)
		return jsonResponse(http.StatusBadGateway, corrID, errorResponse{Error: code, Reason: reason}), nil
	}

	logger.Info("example run complete", "runId", out.RunID)
	return jsonResponse(http.StatusOK, corrID, runResponse{Answer: out.Content, RunID: out.RunID}), nil
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func jsonResponse(status int, corrID string, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"INTERNAL_ERROR","reason":"encode_response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(raw),
	}
}
