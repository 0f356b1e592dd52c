package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"writer-example/internal/domain"
)

type LLMClient interface {
	ChatComplete(ctx context.Context, in domain.ChatRequest) (domain.ChatResponse, error)
}

// TranscriptRecorder persists finished runs. Recording is best-effort.
type TranscriptRecorder interface {
	SaveRun(ctx context.Context, t domain.Transcript) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ChatExample sends the example conversation once and extracts the first
// choice.
type ChatExample struct {
	llm      LLMClient
	recorder TranscriptRecorder
	logger   *slog.Logger
}

type ExampleOption func(*ChatExample)

func WithRecorder(r TranscriptRecorder) ExampleOption {
	return func(s *ChatExample) {
		s.recorder = r
	}
}

func WithLogger(l *slog.Logger) ExampleOption {
	return func(s *ChatExample) {
		if l != nil {
			s.logger = l
		}
	}
}

type ExampleOutput struct {
	RunID   string
	Content string
}

func NewChatExample(llm LLMClient, opts ...ExampleOption) (*ChatExample, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	s := &ChatExample{llm: llm, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run makes a single attempt. Every failure, including a panic inside the
// client, comes back as *Error.
func (s *ChatExample) Run(ctx context.Context) (ExampleOutput, error) {
	runID := newUUID()
	req := ExampleRequest()

	content, err := s.complete(ctx, req)

	s.record(ctx, runID, req, content, err)

	if err != nil {
		return ExampleOutput{RunID: runID}, err
	}
	return ExampleOutput{RunID: runID, Content: content}, nil
}

func (s *ChatExample) complete(ctx context.Context, req domain.ChatRequest) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = ""
			err = newError(ErrorRequestFailed, "client_panic", fmt.Errorf("%v", r))
		}
	}()

	resp, err := s.llm.ChatComplete(ctx, req)
	if err != nil {
		return "", newError(ErrorRequestFailed, requestFailureReason(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", newError(ErrorEmptyChoices, "no choices in response", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *ChatExample) record(ctx context.Context, runID string, req domain.ChatRequest, reply string, runErr error) {
	if s.recorder == nil {
		return
	}

	t := domain.Transcript{
		RunID:     runID,
		Model:     req.Model,
		Messages:  req.Messages,
		Reply:     reply,
		Status:    domain.RunStatusComplete,
		CreatedAt: now().UTC(),
	}
	if runErr != nil {
		t.Status = domain.RunStatusFailed
		t.Reason = runErr.Error()
	}

	if err := s.recorder.SaveRun(ctx, t); err != nil {
		s.logger.Warn("failed to record transcript", "runId", runID, "err", err)
	}
}

func requestFailureReason(err error) string {
	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		switch code := statusErr.HTTPStatusCode(); {
		case code == 401 || code == 403:
			return "unauthorized"
		case code == 429:
			return "rate_limited"
		default:
			return fmt.Sprintf("upstream_status_%d", code)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "request_error"
}

var newUUID = func() string {
	return uuid.NewString()
}

var now = time.Now
