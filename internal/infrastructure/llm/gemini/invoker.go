package gemini

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/ports"
	"github.com/UmerKhan7479/SemesterSurvival/internal/infrastructure/resilience"
)

// Invoker walks an ordered candidate list sequentially and returns the first
// success verbatim. Fallback exists to dodge cost/quota/capability failures,
// not latency, so candidates are never raced.
type Invoker struct {
	client         *Client
	executor       *resilience.Executor
	attemptTimeout time.Duration
	metrics        AttemptRecorder
	service        string
}

// AttemptRecorder receives per-candidate outcomes. Nil means no metrics.
type AttemptRecorder interface {
	RecordModelAttempt(service, model string, err error)
	RecordCascadeExhausted(service string)
}

func NewInvoker(client *Client, executor *resilience.Executor, attemptTimeout time.Duration) *Invoker {
	if attemptTimeout <= 0 {
		attemptTimeout = 90 * time.Second
	}
	return &Invoker{
		client:         client,
		executor:       executor,
		attemptTimeout: attemptTimeout,
	}
}

// WithMetrics attaches an attempt recorder.
func (iv *Invoker) WithMetrics(service string, metrics AttemptRecorder) *Invoker {
	iv.service = service
	iv.metrics = metrics
	return iv
}

func (iv *Invoker) Invoke(
	ctx context.Context,
	candidates []string,
	instruction string,
	attachments []ports.Attachment,
	opts ports.GenerationOptions,
) (string, error) {
	if len(candidates) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "invoke model", errors.New("empty candidate list"))
	}

	attempts := make([]domain.ModelAttempt, 0, len(candidates))
	for _, modelID := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var text string
		call := func(callCtx context.Context) error {
			// Each attempt gets its own deadline so a hung candidate
			// cannot stall the whole cascade.
			attemptCtx, cancel := context.WithTimeout(callCtx, iv.attemptTimeout)
			defer cancel()

			out, err := iv.client.Generate(attemptCtx, modelID, instruction, attachments, opts)
			if err != nil {
				return err
			}
			text = out
			return nil
		}

		var err error
		if iv.executor != nil {
			err = iv.executor.Execute(ctx, "model."+modelID, call, classifyGeminiError)
		} else {
			err = call(ctx)
		}
		if iv.metrics != nil {
			iv.metrics.RecordModelAttempt(iv.service, modelID, err)
		}
		if err == nil {
			return text, nil
		}

		slog.Warn("model_candidate_failed", "model", modelID, "error", err)
		attempts = append(attempts, domain.ModelAttempt{ModelID: modelID, Err: err})
	}

	if iv.metrics != nil {
		iv.metrics.RecordCascadeExhausted(iv.service)
	}
	return "", &domain.AggregateFailure{Attempts: attempts}
}
