// Package async runs document extraction jobs on a bounded worker pool,
// decoupling filesystem discovery from the pipeline.
package async

import (
	"context"
	"time"
)

// Job is the smallest useful unit. Extend as needed later (priority, retry,
// trace propagation).
type Job struct {
	Path        string
	Force       bool // process even if the catalog says this document is done
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
