package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"autobbq/internal/logging"
)

// ProgressFunc records a progress checkpoint for the running job.
type ProgressFunc func(ctx context.Context, percent float64) error

// Handler executes one pipeline stage for a claimed job. The returned value
// is marshaled to JSON and stored as the job result. A returned error marks
// the job failed with the error's message captured verbatim.
type Handler func(ctx context.Context, job *Job, progress ProgressFunc) (any, error)

// Pool schedules handler execution on a fixed number of workers. Workers
// claim jobs in first-queued order; a claimed job is owned by exactly one
// worker until it reaches a terminal state.
type Pool struct {
	store        *Store
	logger       *slog.Logger
	workers      int
	pollInterval time.Duration
	handlers     map[Kind]Handler
	listener     func(Job)
	wake         chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// PoolOption configures optional pool behavior.
type PoolOption func(*Pool)

// WithUpdateListener registers a callback invoked after every job mutation.
// Used by the API layer to push progress over websockets.
func WithUpdateListener(listener func(Job)) PoolOption {
	return func(p *Pool) {
		p.listener = listener
	}
}

// NewPool constructs a worker pool over the given store.
func NewPool(store *Store, logger *slog.Logger, workers int, pollInterval time.Duration, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	pool := &Pool{
		store:        store,
		logger:       logging.NewComponentLogger(logger, "queue"),
		workers:      workers,
		pollInterval: pollInterval,
		handlers:     make(map[Kind]Handler),
		wake:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(pool)
	}
	return pool
}

// Register binds a handler to a job kind. Must be called before Start.
func (p *Pool) Register(kind Kind, handler Handler) {
	p.handlers[kind] = handler
}

// EnqueueProcess creates a queued transcription-stage job. It never blocks
// on execution.
func (p *Pool) EnqueueProcess(ctx context.Context, videoID string) (*Job, error) {
	job, err := p.store.NewProcessJob(ctx, videoID)
	if err != nil {
		return nil, err
	}
	p.notify(*job)
	p.wakeWorkers()
	return job, nil
}

// EnqueueRender creates a queued render-stage job with the style payload
// attached.
func (p *Pool) EnqueueRender(ctx context.Context, videoID, styleJSON string) (*Job, error) {
	job, err := p.store.NewRenderJob(ctx, videoID, styleJSON)
	if err != nil {
		return nil, err
	}
	p.notify(*job)
	p.wakeWorkers()
	return job, nil
}

// Job returns the current state of a job, nil when unknown.
func (p *Pool) Job(ctx context.Context, id string) (*Job, error) {
	return p.store.GetByID(ctx, id)
}

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("pool already running")
	}
	if len(p.handlers) == 0 {
		return errors.New("no handlers registered")
	}

	// Jobs stranded in running by a crashed process would otherwise never
	// be claimed again.
	requeued, err := p.store.RequeueInterrupted(ctx)
	if err != nil {
		return err
	}
	if requeued > 0 {
		p.logger.Warn("requeued jobs interrupted by a previous run", logging.Int("count", int(requeued)))
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker(runCtx, i)
	}
	p.logger.Info("worker pool started", logging.Int("workers", p.workers))
	return nil
}

// Stop terminates the workers and waits for in-flight handlers to return.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

func (p *Pool) wakeWorkers() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pool) runWorker(ctx context.Context, index int) {
	defer p.wg.Done()
	logger := p.logger.With(logging.Int("worker", index))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.store.ClaimNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("claim next job", logging.Error(err))
			p.waitForWork(ctx)
			continue
		}
		if job == nil {
			p.waitForWork(ctx)
			continue
		}

		p.executeJob(ctx, logger, job)
	}
}

func (p *Pool) waitForWork(ctx context.Context) {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-p.wake:
	case <-timer.C:
	}
}

func (p *Pool) executeJob(ctx context.Context, logger *slog.Logger, job *Job) {
	logger.Info("job started",
		logging.String("job_id", job.ID),
		logging.String("kind", string(job.Kind)),
		logging.String("video_id", job.VideoID),
	)
	p.notify(*job)

	result, err := p.runHandler(ctx, job)
	if err != nil {
		if markErr := p.store.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			logger.Error("record job failure", logging.Error(markErr))
		}
		logger.Error("job failed", logging.String("job_id", job.ID), logging.Error(err))
		p.notifyByID(ctx, job.ID)
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		if markErr := p.store.MarkFailed(ctx, job.ID, fmt.Sprintf("encode result: %v", err)); markErr != nil {
			logger.Error("record job failure", logging.Error(markErr))
		}
		p.notifyByID(ctx, job.ID)
		return
	}
	if err := p.store.MarkSucceeded(ctx, job.ID, string(resultJSON)); err != nil {
		logger.Error("record job success", logging.Error(err))
		return
	}
	logger.Info("job succeeded", logging.String("job_id", job.ID))
	p.notifyByID(ctx, job.ID)
}

// runHandler isolates handler execution so a panic inside a stage marks the
// job failed instead of killing the worker.
func (p *Pool) runHandler(ctx context.Context, job *Job) (result any, err error) {
	handler, ok := p.handlers[job.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown job kind: %s", job.Kind)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panic: %v", recovered)
		}
	}()

	progress := func(ctx context.Context, percent float64) error {
		if err := p.store.SetProgress(ctx, job.ID, percent); err != nil {
			return err
		}
		p.notifyByID(ctx, job.ID)
		return nil
	}
	return handler(ctx, job, progress)
}

func (p *Pool) notify(job Job) {
	if p.listener != nil {
		p.listener(job)
	}
}

func (p *Pool) notifyByID(ctx context.Context, id string) {
	if p.listener == nil {
		return
	}
	if job, err := p.store.GetByID(ctx, id); err == nil && job != nil {
		p.listener(*job)
	}
}
