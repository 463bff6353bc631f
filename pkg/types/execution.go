package types

import "time"

// RouteRun represents a single execution of a route.
type RouteRun struct {
	ID        string       `json:"id"`
	Route     string       `json:"route"`
	State     RunState     `json:"state"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   *time.Time   `json:"endedAt,omitempty"`
	Steps     []StepStatus `json:"steps"`
	Result    RunResult    `json:"result"`
	Error     string       `json:"error,omitempty"`
}

type RunState string

const (
	RunStatePending   RunState = "pending"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
	RunStateCancelled RunState = "cancelled"
)

type StepStatus struct {
	ID        string      `json:"id"`
	Target    string      `json:"target"`
	State     StepState   `json:"state"`
	StartedAt *time.Time  `json:"startedAt,omitempty"`
	EndedAt   *time.Time  `json:"endedAt,omitempty"`
	Output    interface{} `json:"output,omitempty"`
	Error     string      `json:"error,omitempty"`
}

type StepState string

const (
	StepStateWaiting   StepState = "waiting"
	StepStateRunning   StepState = "running"
	StepStateCompleted StepState = "completed"
	StepStateFailed    StepState = "failed"
	StepStateSkipped   StepState = "skipped"
)

// RunResult mirrors the response payload a finished route reports: the
// declared response template plus execution metadata.
type RunResult struct {
	Message       string                 `json:"message"`
	StatusCode    int                    `json:"statusCode"`
	ExecutionTime string                 `json:"executionTime"`
	StepsExecuted int                    `json:"stepsExecuted"`
	WorkflowPath  string                 `json:"workflowPath"`
	Method        string                 `json:"method"`
	Data          map[string]interface{} `json:"data,omitempty"`
}
