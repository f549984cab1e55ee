package mq

import (
	"context"
	"fmt"

	"github.com/forge-ai/promptable"
	"github.com/forge-ai/promptable/providers"
	"github.com/forge-ai/promptable/shared/events"
	"github.com/google/uuid"
)

// JobQueue enqueues deferred generations as generate.requested events.
type JobQueue struct {
	pub Publisher
}

func NewJobQueue(pub Publisher) *JobQueue {
	return &JobQueue{pub: pub}
}

// Enqueue publishes job and returns its id, assigning one when unset.
func (q *JobQueue) Enqueue(ctx context.Context, job promptable.Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	body, err := events.Wrap(events.GenerateRequested, RequestedPayload(job))
	if err != nil {
		return "", fmt.Errorf("wrap job %s: %w", job.ID, err)
	}
	if err := q.pub.Publish(ctx, events.GenerateRequested, body); err != nil {
		return "", fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	return job.ID, nil
}

func RequestedPayload(job promptable.Job) events.GenerateRequestedPayload {
	p := events.GenerateRequestedPayload{
		JobID:    job.ID,
		TypeName: job.TypeName,
		RecordID: job.RecordID,
		Context:  job.Context,
	}
	if o := job.Overrides; o != nil {
		p.Model = o.Model
		p.Temperature = o.Temperature
		p.Format = string(o.Format)
	}
	return p
}

// JobFromPayload is the inverse of RequestedPayload.
func JobFromPayload(p events.GenerateRequestedPayload) promptable.Job {
	job := promptable.Job{
		ID:       p.JobID,
		TypeName: p.TypeName,
		RecordID: p.RecordID,
		Context:  p.Context,
	}
	if p.Model != "" || p.Temperature != nil || p.Format != "" {
		job.Overrides = &promptable.Overrides{
			Model:       p.Model,
			Temperature: p.Temperature,
			Format:      providers.Format(p.Format),
		}
	}
	return job
}
