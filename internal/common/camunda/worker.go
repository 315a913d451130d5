// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"label-compliance/internal/common/errors"
	"label-compliance/internal/common/logger"
	"label-compliance/internal/common/metrics"
)

// JobHandler must return an error (required by Zeebe client)
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	timeout time.Duration,
	handler JobHandler,
	log logger.Logger,
) *CamundaWorker {
	log = log.With(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			if err := handler.Handle(client, job); err != nil {
				log.Error("Handler returned error", map[string]interface{}{
					"jobKey": job.Key,
					"error":  err.Error(),
				})
			}
		}).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", nil)
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

// ExecuteFunc is a pipeline stage entry point.
type ExecuteFunc[I any, O any] func(ctx context.Context, input *I) (*O, error)

// TaskHandler adapts a stage Execute function to a Zeebe job: job variables are
// decoded into I, the stage output O completes the job, errors go through ErrorHandler.
type TaskHandler[I any, O any] struct {
	taskType   string
	timeout    time.Duration
	execute    ExecuteFunc[I, O]
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewTaskHandler[I any, O any](taskType string, timeout time.Duration, execute ExecuteFunc[I, O], log logger.Logger) *TaskHandler[I, O] {
	log = log.With(map[string]interface{}{"taskType": taskType})
	return &TaskHandler[I, O]{
		taskType:   taskType,
		timeout:    timeout,
		execute:    execute,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *TaskHandler[I, O]) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(h.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(h.taskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.Run(ctx, job.Variables)
	metrics.WorkerJobDuration.WithLabelValues(h.taskType).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(h.taskType, string(errors.Normalize(err).Code)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, errors.NewInternalError(err))
		return nil
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("complete job %d: %w", job.Key, err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(h.taskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":   job.Key,
		"duration": time.Since(start).String(),
	})
	return nil
}

// Run decodes the job variables and executes the stage.
func (h *TaskHandler[I, O]) Run(ctx context.Context, variables string) (*O, error) {
	var input I
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &input); err != nil {
			return nil, errors.NewInvalidRequestError(fmt.Sprintf("parse job variables: %v", err))
		}
	}
	return h.execute(ctx, &input)
}
