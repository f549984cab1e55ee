package internal

import (
	"context"

	"github.com/forge-ai/promptable"
	"github.com/forge-ai/promptable/shared/events"
	"github.com/forge-ai/promptable/shared/mq"
	"github.com/rs/zerolog"
)

// Handler performs generate.requested jobs and reports the outcome.
type Handler struct {
	loc    promptable.Locator
	pub    mq.Publisher
	logger zerolog.Logger
}

func NewHandler(loc promptable.Locator, pub mq.Publisher, logger zerolog.Logger) *Handler {
	return &Handler{loc: loc, pub: pub, logger: logger}
}

// Handle runs one delivery body. A job that could not be performed is
// reported as generate.failed and its error returned so the delivery is
// rejected. The returned error is nil only when the outcome was published.
func (h *Handler) Handle(ctx context.Context, body []byte) error {
	p, err := events.Unwrap[events.GenerateRequestedPayload](body)
	if err != nil {
		return err
	}
	job := mq.JobFromPayload(*p)

	h.logger.Debug().
		Str("job", job.ID).
		Str("type", job.TypeName).
		Str("id", job.RecordID).
		Msg("performing deferred generation")

	text, ok, err := promptable.Perform(ctx, h.loc, job, h.logger)
	if err != nil {
		b, _ := events.Wrap(events.GenerateFailed, events.GenerateFailedPayload{
			JobID: job.ID, TypeName: job.TypeName, RecordID: job.RecordID, Error: err.Error(),
		})
		if perr := h.pub.Publish(ctx, events.GenerateFailed, b); perr != nil {
			h.logger.Error().Err(perr).Str("job", job.ID).Msg("publish failure event")
		}
		return err
	}

	b, _ := events.Wrap(events.GenerateComplete, events.GenerateCompletePayload{
		JobID: job.ID, TypeName: job.TypeName, RecordID: job.RecordID, Text: text, OK: ok,
	})
	return h.pub.Publish(ctx, events.GenerateComplete, b)
}
