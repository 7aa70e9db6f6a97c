// Package events carries run status transitions between the worker and any
// live subscribers over a per-run publish/subscribe channel. Delivery is
// at-most-once per subscriber: there is no history and no replay, so a
// subscriber that connects after a transition was published never sees it.
package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RunChannel returns the pub/sub channel name for one run.
func RunChannel(runID uuid.UUID) string {
	return fmt.Sprintf("run:%s", runID)
}

// StatusMessage formats a plain status transition.
func StatusMessage(status string) string {
	return "STATUS:" + status
}

// FailureMessage formats a terminal failure with its short error description.
func FailureMessage(errMsg string) string {
	return "STATUS:failed ERROR:" + errMsg
}

// Bus is the run status channel. Implementations must be safe for concurrent use.
type Bus interface {
	Publish(ctx context.Context, runID uuid.UUID, message string) error
	Subscribe(ctx context.Context, runID uuid.UUID) (*Subscription, error)
	Close() error
}

// Subscription is one live subscriber on a single run's channel. C is closed
// when the subscription ends.
type Subscription struct {
	C <-chan string

	stop func()
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

// RedisBus implements Bus on a redis pub/sub connection.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus creates a RedisBus from a Redis URL.
func NewRedisBus(redisURL string) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisBus{client: redis.NewClient(opts)}, nil
}

func (b *RedisBus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Publish(ctx context.Context, runID uuid.UUID, message string) error {
	return b.client.Publish(ctx, RunChannel(runID), message).Err()
}

// Subscribe opens a subscription on one run's channel. The returned channel
// receives every message published after this call returns, in publish order,
// until Close or ctx cancellation.
func (b *RedisBus) Subscribe(ctx context.Context, runID uuid.UUID) (*Subscription, error) {
	sub := b.client.Subscribe(ctx, RunChannel(runID))

	// Confirm the subscription actually started before handing it out, so a
	// publish immediately after Subscribe returns is not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan string)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- m.Payload:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	stopped := false
	return &Subscription{
		C: out,
		stop: func() {
			if !stopped {
				stopped = true
				close(done)
				_ = sub.Close()
			}
		},
	}, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

// Compile-time check that RedisBus implements Bus.
var _ Bus = (*RedisBus)(nil)
