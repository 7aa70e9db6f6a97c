// Package queue carries generation jobs from the API process to the worker
// pool over a durable, at-least-once redis queue. The payload is the minimum
// a worker needs; everything else lives in the run record.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fromscratch/blueprint/internal/config"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeGenerateBlueprint is the task type for one blueprint generation run.
const TypeGenerateBlueprint = "blueprint:generate"

// GeneratePayload is the queue-resident job body.
type GeneratePayload struct {
	RunID      uuid.UUID `json:"run_id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Idea       string    `json:"idea"`
	WebhookURL string    `json:"webhook_url,omitempty"`
}

// NewGenerateTask builds the asynq task for a payload.
func NewGenerateTask(p GeneratePayload) (*asynq.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode generate payload: %w", err)
	}
	return asynq.NewTask(TypeGenerateBlueprint, body), nil
}

// RedisOpt parses a Redis URL into asynq connection options. Both the
// enqueuing client and the worker server use this.
func RedisOpt(redisURL string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return opt, nil
}

// Client enqueues generation jobs.
type Client struct {
	client      *asynq.Client
	execTimeout asynq.Option
	resultTTL   asynq.Option
}

// NewClient creates a queue client. cfg.ExecTimeout is the hard budget after
// which the queue abandons the job regardless of the worker; cfg.ResultTTL is
// how long the queue keeps its own record of a finished job. The run row is
// unaffected by either.
func NewClient(redisURL string, cfg config.QueueConfig) (*Client, error) {
	opt, err := RedisOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		client:      asynq.NewClient(opt),
		execTimeout: asynq.Timeout(cfg.ExecTimeout),
		resultTTL:   asynq.Retention(cfg.ResultTTL),
	}, nil
}

// EnqueueGenerate pushes one job and returns the queue's job id. The task is
// never retried after a handler failure; redelivery only happens when a
// worker dies before acknowledging (at-least-once).
func (c *Client) EnqueueGenerate(ctx context.Context, p GeneratePayload) (string, error) {
	task, err := NewGenerateTask(p)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, c.execTimeout, c.resultTTL, asynq.MaxRetry(0))
	if err != nil {
		return "", fmt.Errorf("enqueue generate task: %w", err)
	}
	return info.ID, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
