package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"verify-proxy/internal/domain"
	"verify-proxy/internal/observability"
	"verify-proxy/internal/ratelimit"
	"verify-proxy/internal/verifier"
)

// Job is one pending verification awaiting the drain loop. The queue owns
// the job from admission until dequeue and resolves its done channel
// exactly once.
type Job struct {
	ID    string
	Email string
	Key   string
	done  chan domain.VerificationResult
}

// Done resolves with the job's result once the drain loop has serviced it.
func (j *Job) Done() <-chan domain.VerificationResult {
	return j.done
}

// Stats is a point-in-time snapshot of queue state.
type Stats struct {
	Length       int
	IsProcessing bool
	Draining     bool
}

// Queue is a FIFO of verification jobs drained by at most one active loop.
// The loop services jobs strictly one at a time and pauses a fixed delay
// between jobs to respect the upstream's rate limit.
type Queue struct {
	verifier verifier.Verifier
	pacer    ratelimit.Pacer
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time

	mu         sync.Mutex
	pending    []*Job
	processing bool
	draining   bool
}

// New builds a queue around the verifier and pacer. A nil metrics is
// allowed; collectors are then skipped.
func New(v verifier.Verifier, pacer ratelimit.Pacer, metrics *observability.Metrics, logger *zap.Logger) (*Queue, error) {
	if v == nil {
		return nil, fmt.Errorf("verifier is required")
	}
	if pacer == nil {
		return nil, fmt.Errorf("pacer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		verifier: v,
		pacer:    pacer,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Submit appends a job to the tail of the queue and starts the drain loop
// if it is not already running. Rejected with domain.ErrShuttingDown once
// draining has begun.
func (q *Queue) Submit(ctx context.Context, email string, key string) (*Job, error) {
	job := &Job{
		ID:    uuid.NewString(),
		Email: email,
		Key:   key,
		done:  make(chan domain.VerificationResult, 1),
	}

	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		q.metrics.IncSubmissionRejected()
		return nil, domain.ErrShuttingDown
	}

	q.pending = append(q.pending, job)
	depth := len(q.pending)
	start := !q.processing
	if start {
		q.processing = true
	}
	q.mu.Unlock()

	q.metrics.SetQueueDepth(depth)
	observability.WithContextLogger(q.logger, ctx).Debug("job queued",
		zap.String("jobId", job.ID),
		zap.String("email", email),
		zap.Int("queueLength", depth),
	)

	if start {
		go q.drain()
	}

	return job, nil
}

// drain services pending jobs in FIFO order until the queue is empty. It is
// never started twice concurrently; the processing flag is cleared under
// the same lock that checks for remaining work, so a submit racing with
// loop exit either extends this loop or starts the next one.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.processing = false
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		depth := len(q.pending)
		q.mu.Unlock()

		q.metrics.SetQueueDepth(depth)
		q.service(job)

		q.mu.Lock()
		more := len(q.pending) > 0
		draining := q.draining
		q.mu.Unlock()

		// Already-admitted jobs are never abandoned; draining only skips
		// the courtesy delay between them.
		if more && !draining {
			if err := q.pacer.Pause(context.Background()); err != nil {
				q.logger.Warn("inter-job pause interrupted", zap.Error(err))
			}
		}
	}
}

func (q *Queue) service(job *Job) {
	start := q.now()
	result := q.verifier.Verify(context.Background(), job.Email, job.Key)
	elapsed := q.now().Sub(start)

	q.metrics.ObserveVerificationDuration(elapsed)
	switch {
	case result.Success:
		q.metrics.IncVerification(observability.OutcomeSuccess)
		q.logger.Debug("verification completed",
			zap.String("jobId", job.ID),
			zap.String("email", job.Email),
			zap.Int("upstreamStatus", result.StatusCode),
			zap.Duration("elapsed", elapsed),
		)
	case result.IsTimeout:
		q.metrics.IncVerification(observability.OutcomeTimeout)
		q.logger.Warn("verification timed out",
			zap.String("jobId", job.ID),
			zap.String("email", job.Email),
			zap.Duration("elapsed", elapsed),
		)
	default:
		q.metrics.IncVerification(observability.OutcomeError)
		q.logger.Warn("verification failed",
			zap.String("jobId", job.ID),
			zap.String("email", job.Email),
			zap.String("error", result.Error),
		)
	}

	job.done <- result
}

// BeginDraining rejects all future submissions. Jobs already in the queue
// continue to completion.
func (q *Queue) BeginDraining() {
	q.mu.Lock()
	q.draining = true
	q.mu.Unlock()
}

func (q *Queue) Draining() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) Processing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing
}

func (q *Queue) Snapshot() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Length:       len(q.pending),
		IsProcessing: q.processing,
		Draining:     q.draining,
	}
}
