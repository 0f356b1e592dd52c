package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"writer-example/internal/usecase"
)

// Console prints a run's outcome: the reply on out, or an "Error:" line on
// errOut. It never reports failure to the caller.
type Console struct {
	uc     UseCase
	out    io.Writer
	errOut io.Writer
}

func NewConsole(uc UseCase, out, errOut io.Writer) (*Console, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if out == nil || errOut == nil {
		return nil, errors.New("handler: output writers must not be nil")
	}
	return &Console{uc: uc, out: out, errOut: errOut}, nil
}

func (c *Console) Print(ctx context.Context) {
	res, err := c.uc.Run(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(c.errOut, "Error:", describe(err))
		return
	}
	_, _ = fmt.Fprintln(c.out, res.Content)
}

// describe flattens the failure onto one line; upstream error bodies are
// often pretty-printed JSON.
func describe(err error) string {
	d := err.Error()
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		d = ucErr.Description()
	}
	return strings.Join(strings.Fields(d), " ")
}
