// Package outbox is the reconciliation path for ownership-index drift. When a
// primary artifact write succeeds but the follow-up index mutation fails, the
// failed mutation is enqueued here and retried in the background instead of
// failing the caller's request.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/platform/logger"
	"github.com/lnco/artifact-service/internal/repos"
)

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

type Task struct {
	Op          Op
	Contributor string
	ArtifactID  string
	Attempts    int
}

type Outbox struct {
	log         *logger.Logger
	ownership   repos.OwnershipRepo
	tasks       chan Task
	maxAttempts int
	retryDelay  time.Duration
}

func New(baseLog *logger.Logger, ownership repos.OwnershipRepo) *Outbox {
	return &Outbox{
		log:         baseLog.With("worker", "IndexOutbox"),
		ownership:   ownership,
		tasks:       make(chan Task, 1024),
		maxAttempts: 5,
		retryDelay:  2 * time.Second,
	}
}

// Enqueue never blocks the request path. A full queue is itself drift, so it
// is recorded the same way a permanently failed task is.
func (o *Outbox) Enqueue(task Task) {
	select {
	case o.tasks <- task:
	default:
		o.log.Error("Index outbox full, dropping reconciliation task",
			"op", string(task.Op),
			"contributor", task.Contributor,
			"artifact_id", task.ArtifactID,
		)
	}
}

func (o *Outbox) Start(ctx context.Context) {
	go o.run(ctx)
}

func (o *Outbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-o.tasks:
			o.process(ctx, task)
		}
	}
}

func (o *Outbox) process(ctx context.Context, task Task) {
	task.Attempts++

	var err error
	switch task.Op {
	case OpAdd:
		err = o.ownership.Add(ctx, task.Contributor, task.ArtifactID)
	case OpRemove:
		err = o.ownership.Remove(ctx, task.Contributor, task.ArtifactID)
		if errors.Is(err, domain.ErrNotFound) {
			// The entry never existed; there is nothing left to reconcile.
			err = nil
		}
	default:
		o.log.Error("Unknown outbox op", "op", string(task.Op))
		return
	}

	if err == nil {
		o.log.Info("Reconciled ownership index",
			"op", string(task.Op),
			"contributor", task.Contributor,
			"artifact_id", task.ArtifactID,
			"attempts", task.Attempts,
		)
		return
	}

	if errors.Is(err, domain.ErrIndexCorrupt) || task.Attempts >= o.maxAttempts {
		o.log.Error("Ownership index reconciliation failed permanently",
			"op", string(task.Op),
			"contributor", task.Contributor,
			"artifact_id", task.ArtifactID,
			"attempts", task.Attempts,
			"error", err,
		)
		return
	}

	o.log.Warn("Ownership index reconciliation failed, will retry",
		"op", string(task.Op),
		"contributor", task.Contributor,
		"artifact_id", task.ArtifactID,
		"attempts", task.Attempts,
		"error", err,
	)
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(o.retryDelay * time.Duration(task.Attempts)):
			o.Enqueue(task)
		}
	}()
}
