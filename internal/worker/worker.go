package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-engine/internal/observe"
	queuePkg "github.com/jwebster45206/dungeon-engine/pkg/queue"
)

const (
	workerTimeout = 5 * time.Second
	retryDelay    = 1 * time.Second
)

// Activity statuses reported to metrics.
const (
	StatusStored       = "stored"
	StatusDuplicate    = "duplicate"
	StatusRequeued     = "requeued"
	StatusDeadLettered = "dead_lettered"
)

// Source is the queue the worker drains.
type Source interface {
	BlockingDequeue(ctx context.Context, timeout time.Duration) ([]byte, error)
	Requeue(ctx context.Context, payload []byte) error
	DeadLetter(ctx context.Context, payload []byte) error
}

// Sink stores decoded events. inserted is false for a redelivered event.
type Sink interface {
	Insert(ctx context.Context, event *queuePkg.ActivityEvent) (inserted bool, err error)
}

// Worker moves activity events from the Redis queue into the activity log
type Worker struct {
	id      string
	source  Source
	sink    Sink
	metrics *observe.Metrics
	log     *slog.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new worker instance
func New(source Source, sink Sink, metrics *observe.Metrics, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:      workerID,
		source:  source,
		sink:    sink,
		metrics: metrics,
		log:     log.With("worker_id", workerID),
		timeout: workerTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ID returns the worker identifier.
func (w *Worker) ID() string {
	return w.id
}

// Start consumes events until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Activity worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Activity worker shutting down")
			return nil
		default:
			if err := w.processNext(); err != nil {
				w.log.Error("Error processing activity event", "error", err)
				select {
				case <-w.ctx.Done():
				case <-time.After(retryDelay):
				}
			}
		}
	}
}

// Run starts the worker and stops it when ctx ends.
func (w *Worker) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, w.Stop)
	defer stop()
	return w.Start()
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Activity worker stop requested")
	w.cancel()
}

// processNext handles one payload. Undecodable payloads are dead-lettered;
// payloads the sink fails to store are requeued and the error returned.
func (w *Worker) processNext() error {
	payload, err := w.source.BlockingDequeue(w.ctx, w.timeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue: %w", err)
	}
	if payload == nil {
		return nil
	}

	event, err := queuePkg.FromJSON(payload)
	if err != nil {
		w.log.Warn("Dead-lettering invalid activity payload", "error", err, "payload", string(payload))
		// Shutdown must not drop the payload.
		if dlErr := w.source.DeadLetter(context.WithoutCancel(w.ctx), payload); dlErr != nil {
			return errors.Join(err, dlErr)
		}
		w.metrics.RecordActivity(w.ctx, StatusDeadLettered)
		return nil
	}

	inserted, err := w.sink.Insert(context.WithoutCancel(w.ctx), event)
	if err != nil {
		if rqErr := w.source.Requeue(context.WithoutCancel(w.ctx), payload); rqErr != nil {
			return fmt.Errorf("store failed (%w) and requeue failed: %w", err, rqErr)
		}
		w.metrics.RecordActivity(w.ctx, StatusRequeued)
		return fmt.Errorf("failed to store activity event %s: %w", event.EventID, err)
	}

	if !inserted {
		w.log.Debug("Skipped redelivered activity event", "event_id", event.EventID)
		w.metrics.RecordActivity(w.ctx, StatusDuplicate)
		return nil
	}

	w.log.Debug("Stored activity event",
		"event_id", event.EventID,
		"player_id", event.PlayerID,
		"action", event.Action,
	)
	w.metrics.RecordActivity(w.ctx, StatusStored)
	return nil
}
