package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"verify-proxy/internal/domain"
	"verify-proxy/internal/observability"
	"verify-proxy/internal/queue"
)

const (
	defaultBatchSize      = 50
	defaultMaxBatchEmails = 1000
)

// VerificationService fronts the queue: single verifications await one job,
// batch verifications are split into bounded sub-batches.
type VerificationService struct {
	queue          *queue.Queue
	batchSize      int
	maxBatchEmails int
	logger         *zap.Logger
	metrics        *observability.Metrics
	now            func() time.Time
}

// NewVerificationService builds the orchestrator over the queue. A nil
// metrics is allowed; collectors are then skipped.
func NewVerificationService(q *queue.Queue, batchSize int, maxBatchEmails int, metrics *observability.Metrics, logger *zap.Logger) (*VerificationService, error) {
	if q == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	if maxBatchEmails < batchSize {
		maxBatchEmails = defaultMaxBatchEmails
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VerificationService{
		queue:          q,
		batchSize:      batchSize,
		maxBatchEmails: maxBatchEmails,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// Verify submits one email through the queue and awaits its result.
func (s *VerificationService) Verify(ctx context.Context, email string, key string) (domain.VerificationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	job, err := s.queue.Submit(ctx, email, key)
	if err != nil {
		return domain.VerificationResult{}, err
	}

	select {
	case result := <-job.Done():
		return result, nil
	case <-ctx.Done():
		return domain.VerificationResult{}, ctx.Err()
	}
}

// VerifyBatch verifies up to maxBatchEmails addresses. Targets are split
// into contiguous sub-batches of batchSize; sub-batches run sequentially to
// bound queue depth, while targets within a sub-batch are all submitted
// before any is awaited. Per-item failures never fail the batch.
func (s *VerificationService) VerifyBatch(ctx context.Context, emails []string, key string) (*domain.BatchReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(emails) == 0 {
		return nil, fmt.Errorf("%w: emails is required and must not be empty", domain.ErrValidation)
	}
	if len(emails) > s.maxBatchEmails {
		return nil, fmt.Errorf("%w: emails exceeds maximum of %d", domain.ErrValidation, s.maxBatchEmails)
	}
	if s.queue.Draining() {
		return nil, domain.ErrShuttingDown
	}

	s.metrics.IncBatch(len(emails))
	logger := observability.WithContextLogger(s.logger, ctx)
	logger.Info("batch verification started",
		zap.Int("emails", len(emails)),
		zap.Int("subBatchSize", s.batchSize),
	)

	start := s.now()
	results := make([]domain.VerificationResult, len(emails))

	for offset := 0; offset < len(emails); offset += s.batchSize {
		end := offset + s.batchSize
		if end > len(emails) {
			end = len(emails)
		}

		// Draining mid-batch: sub-batches not yet started are failed
		// without touching the queue.
		if s.queue.Draining() {
			for i := offset; i < len(emails); i++ {
				results[i] = domain.FailureResult(emails[i], domain.ErrShuttingDown.Error())
			}
			logger.Warn("batch curtailed by shutdown",
				zap.Int("completed", offset),
				zap.Int("abandoned", len(emails)-offset),
			)
			break
		}

		s.runSubBatch(ctx, emails, key, offset, end, results)
	}

	report := domain.NewBatchReport(results, s.now().Sub(start))
	logger.Info("batch verification finished",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.Int64("processingTimeMs", report.ProcessingTime),
	)

	return report, nil
}

// runSubBatch submits emails[offset:end] to the queue, then awaits every
// resolution concurrently. Results land at their original indices.
func (s *VerificationService) runSubBatch(ctx context.Context, emails []string, key string, offset int, end int, results []domain.VerificationResult) {
	jobs := make([]*queue.Job, end-offset)
	for i := offset; i < end; i++ {
		job, err := s.queue.Submit(ctx, emails[i], key)
		if err != nil {
			results[i] = domain.FailureResult(emails[i], err.Error())
			continue
		}
		jobs[i-offset] = job
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := offset; i < end; i++ {
		if jobs[i-offset] == nil {
			continue
		}

		index := i
		job := jobs[i-offset]
		g.Go(func() error {
			select {
			case result := <-job.Done():
				results[index] = result
			case <-groupCtx.Done():
				results[index] = domain.FailureResult(emails[index], groupCtx.Err().Error())
			}
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes the fan-in.
	_ = g.Wait()
}
