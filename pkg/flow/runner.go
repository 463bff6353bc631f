package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mhadri/routeflow/pkg/exec"
	"github.com/mhadri/routeflow/pkg/route"
	"github.com/mhadri/routeflow/pkg/step"
	"github.com/mhadri/routeflow/pkg/types"
)

// Simulated execution cost per step type, matching the historical runner.
// Scaled by the runner's latency factor; a factor of 0 disables sleeping.
var simLatency = map[string]time.Duration{
	types.StepTypeBusiness: 500 * time.Millisecond,
	types.StepTypeDB:       time.Second,
	types.StepTypeVendor:   1500 * time.Millisecond,
	types.StepTypeGeneric:  300 * time.Millisecond,
}

// Runner executes a route's steps strictly in file order.
type Runner struct {
	routes   *route.Registry
	steps    *step.Registry
	executor *exec.SafeExecutor
	store    *Store
	cond     ConditionEvaluator

	logger        *slog.Logger
	latencyFactor float64
	quiet         bool
}

func NewRunner(routes *route.Registry, steps *step.Registry, executor *exec.SafeExecutor, store *Store) *Runner {
	return &Runner{
		routes:        routes,
		steps:         steps,
		executor:      executor,
		store:         store,
		cond:          OutputKeyEvaluator{},
		latencyFactor: 1,
	}
}

func (r *Runner) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// SetLatencyFactor scales simulated step latency. 0 disables sleeping.
func (r *Runner) SetLatencyFactor(f float64) {
	if f >= 0 {
		r.latencyFactor = f
	}
}

func (r *Runner) SetConditionEvaluator(cond ConditionEvaluator) {
	if cond != nil {
		r.cond = cond
	}
}

// SetQuiet suppresses progress output. The gateway runs quiet; the CLI does
// not.
func (r *Runner) SetQuiet(quiet bool) {
	r.quiet = quiet
}

// Run executes the named route. The returned run is always populated, even
// on failure, so callers can persist or render partial progress.
func (r *Runner) Run(ctx context.Context, name string, params map[string]string) (*types.RouteRun, error) {
	rt, ok := r.routes.Get(name)
	if !ok {
		return nil, fmt.Errorf("route not found: %s", name)
	}

	run := &types.RouteRun{
		ID:        uuid.NewString(),
		Route:     name,
		State:     types.RunStateRunning,
		StartedAt: time.Now(),
		Steps:     make([]types.StepStatus, len(rt.Steps)),
	}
	for i, ref := range rt.Steps {
		run.Steps[i] = types.StepStatus{
			ID:     ref.Target,
			Target: ref.Target,
			State:  types.StepStateWaiting,
		}
	}
	outputs := make(map[string]interface{})

	r.printf("🚀 Starting route: %s (run %s)\n", rt.Name, run.ID)
	r.printf("📝 Method: %s  Path: %s\n", orUnknown(rt.Method), orUnknown(rt.Path))
	r.printf("🎯 Steps: %d\n", len(rt.Steps))
	r.logInfo("run_start", "route", name, "run", run.ID, "steps", len(rt.Steps))

	for i, ref := range rt.Steps {
		if err := ctx.Err(); err != nil {
			run.State = types.RunStateCancelled
			return r.fail(run, fmt.Errorf("run cancelled before step %s: %w", ref.Target, err))
		}

		stepStart := time.Now()
		run.Steps[i] = types.StepStatus{
			ID:        ref.Target,
			Target:    ref.Target,
			State:     types.StepStateRunning,
			StartedAt: &stepStart,
		}
		status := &run.Steps[i]

		target := r.routes.ResolveTarget(ref)
		st, err := r.lookupStep(target)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// The historical runner warned and moved on when an include
				// target was missing; lint reports these up-front.
				r.finishStep(status, types.StepStateSkipped, "include target not found: "+ref.Target)
				r.printf("  ⚠️  Step %d/%d skipped: file not found: %s\n", i+1, len(rt.Steps), ref.Target)
				continue
			}
			r.finishStep(status, types.StepStateFailed, err.Error())
			return r.fail(run, fmt.Errorf("step %s: %w", ref.Target, err))
		}
		status.ID = st.ID

		if !r.cond.Evaluate(st.When, outputs) {
			r.finishStep(status, types.StepStateSkipped, "")
			r.printf("  ⏭️  Step %d/%d skipped: %s (when: %s)\n", i+1, len(rt.Steps), st.ID, st.When)
			continue
		}

		r.printf("  ⏳ Executing step %d/%d: %s (type: %s)\n", i+1, len(rt.Steps), st.ID, st.Type)

		output, err := r.executeStep(ctx, st, mergeArgs(ref.Args, params))
		if err != nil {
			r.finishStep(status, types.StepStateFailed, err.Error())
			if ctx.Err() != nil {
				run.State = types.RunStateCancelled
			}
			return r.fail(run, fmt.Errorf("step %s failed: %w", st.ID, err))
		}

		r.finishStep(status, types.StepStateCompleted, "")
		status.Output = output
		outputs[st.ID] = output
		if st.SaveAs != "" {
			outputs[st.SaveAs] = output
		}
		if len(st.Branches) > 0 {
			r.printf("  🔀 Branches configured: %v\n", st.Branches)
		}
		r.printf("  ✅ Step completed: %s (%.2fs)\n", st.ID, time.Since(stepStart).Seconds())
	}

	end := time.Now()
	run.EndedAt = &end
	run.State = types.RunStateCompleted
	run.Result = buildResult(rt, outputs, end)

	r.printf("✅ Route completed: %s (total: %.2fs)\n", rt.Name, end.Sub(run.StartedAt).Seconds())
	r.logInfo("run_completed", "route", name, "run", run.ID, "duration", end.Sub(run.StartedAt).String())

	r.persist(run)
	return run, nil
}

func (r *Runner) lookupStep(target string) (*types.Step, error) {
	if st, ok := r.steps.GetByFile(target); ok {
		return st, nil
	}
	return step.LoadFile(target)
}

func (r *Runner) executeStep(ctx context.Context, st *types.Step, args map[string]string) (interface{}, error) {
	if !st.Available && st.Reason != "" {
		return nil, fmt.Errorf("step unavailable: %s", st.Reason)
	}

	if st.Run != "" {
		return r.executeCommand(ctx, st, args)
	}
	return r.simulate(ctx, st)
}

func (r *Runner) executeCommand(ctx context.Context, st *types.Step, args map[string]string) (interface{}, error) {
	if r.executor == nil {
		return nil, errors.New("no executor configured")
	}
	if st.Timeout != "" {
		d, err := time.ParseDuration(st.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", st.Timeout, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	res, err := r.executor.Run(ctx, st.Run, args)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, fmt.Errorf("command exited with %d: %s", res.Code, res.Stderr)
	}
	return map[string]interface{}{
		"stdout":   res.Stdout,
		"stderr":   res.Stderr,
		"exitCode": res.Code,
	}, nil
}

// simulate mimics the historical typed execution: each type carries a fixed
// cost and always succeeds.
func (r *Runner) simulate(ctx context.Context, st *types.Step) (interface{}, error) {
	latency, ok := simLatency[st.Type]
	if !ok {
		latency = simLatency[types.StepTypeGeneric]
	}
	scaled := time.Duration(float64(latency) * r.latencyFactor)
	if err := sleepCtx(ctx, scaled); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":     st.ID,
		"name":   st.Name,
		"type":   st.Type,
		"desc":   st.Desc,
		"status": "simulated",
	}, nil
}

func (r *Runner) finishStep(status *types.StepStatus, state types.StepState, errMsg string) {
	end := time.Now()
	status.EndedAt = &end
	status.State = state
	status.Error = errMsg
}

func (r *Runner) fail(run *types.RouteRun, err error) (*types.RouteRun, error) {
	end := time.Now()
	run.EndedAt = &end
	if run.State != types.RunStateCancelled {
		run.State = types.RunStateFailed
	}
	run.Error = err.Error()
	r.logError("run_failed", "route", run.Route, "run", run.ID, "error", err)
	r.persist(run)
	return run, err
}

func (r *Runner) persist(run *types.RouteRun) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(run); err != nil {
		r.logError("run_persist_failed", "run", run.ID, "error", err)
	}
}

func buildResult(rt *types.Route, outputs map[string]interface{}, end time.Time) types.RunResult {
	message := rt.Response.Message
	if message == "" {
		message = "Workflow completed"
	}
	code := rt.Response.StatusCode
	if code == 0 {
		code = 200
	}
	return types.RunResult{
		Message:       message,
		StatusCode:    code,
		ExecutionTime: end.Format("2006-01-02 15:04:05"),
		StepsExecuted: len(rt.Steps),
		WorkflowPath:  orUnknown(rt.Path),
		Method:        orUnknown(rt.Method),
		Data:          outputs,
	}
}

func mergeArgs(refArgs, params map[string]string) map[string]string {
	if len(refArgs) == 0 && len(params) == 0 {
		return nil
	}
	merged := make(map[string]string, len(refArgs)+len(params))
	for k, v := range refArgs {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) printf(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Printf(format, args...)
}

func (r *Runner) logInfo(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func (r *Runner) logError(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}
