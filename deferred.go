package promptable

import (
	"context"
	"fmt"

	"github.com/forge-ai/promptable/metrics"
	"github.com/rs/zerolog"
)

// Record is anything a deferred job can generate content for.
type Record interface {
	GenerateContent(ctx context.Context, vars map[string]any, o Overrides) (string, bool, error)
}

// CompletionNotifier is implemented by records that want to hear about the
// result of a deferred generation.
type CompletionNotifier interface {
	GenerationCompleted(ctx context.Context, text string, ok bool)
}

// ContentSetter is implemented by records that store the generated text.
type ContentSetter interface {
	SetGeneratedContent(text string)
}

// Saver persists a record after its content was set.
type Saver interface {
	Save(ctx context.Context) error
}

// Locator finds the record a job refers to.
type Locator interface {
	Find(ctx context.Context, typeName, id string) (Record, bool, error)
}

// Job is the unit handed to the queue.
type Job struct {
	ID        string         `json:"job_id,omitempty"`
	TypeName  string         `json:"type_name"`
	RecordID  string         `json:"record_id"`
	Context   map[string]any `json:"context"`
	Overrides *Overrides     `json:"overrides,omitempty"`
}

// Enqueuer accepts jobs for later execution and returns a job handle.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) (string, error)
}

// GenerateLater hands the generation for typeName#id to q.
func (c *Client) GenerateLater(ctx context.Context, q Enqueuer, typeName, id string, vars map[string]any, o *Overrides) (string, error) {
	c.cfg.Logger.Info().Str("type", typeName).Str("id", id).Msg("enqueuing deferred generation")

	handle, err := q.Enqueue(ctx, Job{TypeName: typeName, RecordID: id, Context: vars, Overrides: o})
	if err != nil {
		return "", fmt.Errorf("enqueue %s#%s: %w", typeName, id, err)
	}
	metrics.JobsEnqueuedTotal.Inc()
	return handle, nil
}

// Perform runs a deferred job: it locates the record, generates, notifies
// the record and stores the result when the record supports it. A record
// that no longer exists makes the job a silent no-op.
func Perform(ctx context.Context, loc Locator, job Job, logger zerolog.Logger) (string, bool, error) {
	rec, found, err := loc.Find(ctx, job.TypeName, job.RecordID)
	if err != nil {
		metrics.JobsTotal.WithLabelValues(metrics.JobFailed).Inc()
		return "", false, fmt.Errorf("find %s#%s: %w", job.TypeName, job.RecordID, err)
	}
	if !found {
		metrics.JobsTotal.WithLabelValues(metrics.JobSkipped).Inc()
		return "", false, nil
	}

	var o Overrides
	if job.Overrides != nil {
		o = *job.Overrides
	}
	text, ok, err := rec.GenerateContent(ctx, job.Context, o)
	if err != nil {
		metrics.JobsTotal.WithLabelValues(metrics.JobFailed).Inc()
		return "", false, fmt.Errorf("generate %s#%s: %w", job.TypeName, job.RecordID, err)
	}

	if n, is := rec.(CompletionNotifier); is {
		n.GenerationCompleted(ctx, text, ok)
	}
	if s, is := rec.(ContentSetter); is {
		s.SetGeneratedContent(text)
		if sv, is := rec.(Saver); is {
			if err := sv.Save(ctx); err != nil {
				metrics.JobsTotal.WithLabelValues(metrics.JobFailed).Inc()
				return text, ok, fmt.Errorf("save %s#%s: %w", job.TypeName, job.RecordID, err)
			}
		}
	}

	logger.Info().Str("type", job.TypeName).Str("id", job.RecordID).Msg("deferred generation completed")
	metrics.JobsTotal.WithLabelValues(metrics.JobCompleted).Inc()
	return text, ok, nil
}
