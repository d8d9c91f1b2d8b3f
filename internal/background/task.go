package background

import (
	"context"
	"errors"
	"time"
)

// TaskStatus is the outcome of a task's most recent run
type TaskStatus string

const (
	TaskStatusScheduled  TaskStatus = "SCHEDULED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusSuccess    TaskStatus = "SUCCESS"
	TaskStatusFailure    TaskStatus = "FAILURE"
)

// TaskFunc is the body of a periodic task
type TaskFunc func(ctx context.Context) error

// TaskResult records the latest run of one task
type TaskResult struct {
	Name           string        `json:"name"`
	Schedule       string        `json:"schedule"`
	Status         TaskStatus    `json:"status"`
	Error          string        `json:"error,omitempty"`
	LastRun        *time.Time    `json:"last_run,omitempty"`
	NextRun        *time.Time    `json:"next_run,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Runs           int           `json:"runs"`
	Failures       int           `json:"failures"`
}

// Common errors
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrDuplicateTask  = errors.New("task already registered")
	ErrAlreadyRunning = errors.New("task manager already running")
)
