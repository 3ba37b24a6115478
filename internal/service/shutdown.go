package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"verify-proxy/internal/queue"
)

const defaultShutdownPollInterval = 100 * time.Millisecond

// ShutdownState is the coordinator's lifecycle phase.
type ShutdownState string

const (
	StateRunning  ShutdownState = "RUNNING"
	StateDraining ShutdownState = "DRAINING"
	StateStopped  ShutdownState = "STOPPED"
)

// Server is the inbound transport the coordinator closes once the queue is
// empty. *fiber.App satisfies it.
type Server interface {
	Shutdown() error
}

// ShutdownCoordinator moves the process through RUNNING -> DRAINING ->
// STOPPED. Draining refuses new queue admissions while already-admitted
// jobs run to completion; the transport shuts down only once the queue is
// empty and idle.
type ShutdownCoordinator struct {
	queue        *queue.Queue
	server       Server
	pollInterval time.Duration
	logger       *zap.Logger

	mu    sync.Mutex
	state ShutdownState
}

func NewShutdownCoordinator(q *queue.Queue, server Server, pollInterval time.Duration, logger *zap.Logger) (*ShutdownCoordinator, error) {
	if q == nil {
		return nil, fmt.Errorf("queue is required")
	}
	if server == nil {
		return nil, fmt.Errorf("server is required")
	}
	if pollInterval <= 0 {
		pollInterval = defaultShutdownPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ShutdownCoordinator{
		queue:        q,
		server:       server,
		pollInterval: pollInterval,
		logger:       logger,
		state:        StateRunning,
	}, nil
}

func (c *ShutdownCoordinator) State() ShutdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ShutdownCoordinator) setState(state ShutdownState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Run blocks until ctx is cancelled (the termination signal), then drains
// the queue and shuts the server down. Returns nil on a clean stop.
func (c *ShutdownCoordinator) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	<-ctx.Done()
	return c.drain()
}

func (c *ShutdownCoordinator) drain() error {
	c.setState(StateDraining)
	c.queue.BeginDraining()
	c.logger.Info("shutdown requested, draining queue",
		zap.Int("queueLength", c.queue.Len()),
	)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for c.queue.Len() > 0 || c.queue.Processing() {
		<-ticker.C
	}

	err := c.server.Shutdown()
	c.setState(StateStopped)

	if err != nil {
		c.logger.Error("server shutdown failed", zap.Error(err))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	c.logger.Info("shutdown complete")
	return nil
}
