package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// Uploader submits a document and reports upload progress
type Uploader interface {
	Submit(ctx context.Context, req models.SubmissionRequest, onProgress func(int)) (*models.TaskReference, error)
}

// TaskLookup resolves the background job id for an uploaded document
type TaskLookup interface {
	LookupTask(ctx context.Context, documentID string) (string, error)
}

// Poller waits for a background job to finish
type Poller interface {
	Poll(ctx context.Context, jobID string, interval time.Duration, timeout time.Duration, onTick func(models.JobHandle)) (*models.JobHandle, error)
}

// AnalysisFetcher downloads a finished analysis
type AnalysisFetcher interface {
	GetAnalysis(ctx context.Context, analysisID string) (*models.AnalysisResult, error)
}

// Coordinator drives one document through upload, task lookup, job polling and
// result fetch, publishing a WorkflowState after every step.
// At most one run is active at a time.
type Coordinator struct {
	uploader Uploader
	tasks    TaskLookup
	poller   Poller
	analyses AnalysisFetcher

	limits       models.UploadLimits
	pollInterval time.Duration
	pollTimeout  time.Duration

	store   *StateStore
	metrics *Metrics
	tracer  trace.Tracer
	logger  *lib.Logger

	running  atomic.Bool
	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger *lib.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink; nil disables metrics
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithTracerProvider sets where run and stage spans are sent
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		if tp != nil {
			c.tracer = tp.Tracer(traceScopeWorkflow)
		}
	}
}

// WithStateStore shares an existing store, e.g. one a renderer already watches
func WithStateStore(store *StateStore) Option {
	return func(c *Coordinator) {
		if store != nil {
			c.store = store
		}
	}
}

// NewCoordinator creates a Coordinator using the limits and poll settings of cfg
func NewCoordinator(uploader Uploader, tasks TaskLookup, poller Poller, analyses AnalysisFetcher, cfg models.ProjectConfig, opts ...Option) *Coordinator {
	c := &Coordinator{
		uploader:     uploader,
		tasks:        tasks,
		poller:       poller,
		analyses:     analyses,
		limits:       cfg.Upload.Limits(),
		pollInterval: cfg.Workflow.PollInterval(),
		pollTimeout:  cfg.Workflow.PollTimeout(),
		tracer:       otel.Tracer(traceScopeWorkflow),
		logger:       lib.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewStateStore(c.logger)
	}
	return c
}

// State returns a snapshot of the current workflow state
func (c *Coordinator) State() models.WorkflowState {
	return c.store.Current()
}

// Subscribe registers a synchronous observer; see StateStore.Subscribe
func (c *Coordinator) Subscribe(fn func(models.WorkflowState)) func() {
	return c.store.Subscribe(fn)
}

// Watch streams states until ctx is done; see StateStore.Watch
func (c *Coordinator) Watch(ctx context.Context) <-chan models.WorkflowState {
	return c.store.Watch(ctx)
}

// Run executes one full workflow for req on the calling goroutine.
// A Run while another is in flight is rejected with a busy error and leaves the
// in-flight run untouched. Starting from complete or failed resets to idle first.
// Any failure ends the run in the failed state; the returned error carries its kind.
func (c *Coordinator) Run(ctx context.Context, req models.SubmissionRequest) (*models.AnalysisResult, error) {
	if !c.running.CompareAndSwap(false, true) {
		stage := c.store.Current().Stage
		c.logger.Warn("Rejected run while another is in progress", "stage", stage, "file", req.FileName)
		return nil, lib.ErrRunInProgress(string(stage))
	}
	defer c.running.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	c.setCancel(cancel)
	defer func() {
		c.setCancel(nil)
		cancel()
	}()

	if c.store.Current().Stage.IsTerminal() {
		if err := c.store.Transition(models.IdleState()); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	startTime := time.Now()

	runCtx, span := startRunSpan(runCtx, c.tracer, runID, req)
	defer span.End()

	c.metrics.IncActiveRuns()
	defer c.metrics.DecActiveRuns()

	lib.LogRunCreated(c.logger, runID, req.FileName, req.Size)

	result, err := c.execute(runCtx, runID, req, span)
	markSpanResult(span, err)
	if err != nil {
		c.metrics.IncRun(string(models.StageFailed))
		return nil, err
	}

	c.metrics.IncRun(string(models.StageComplete))
	lib.LogRunCompleted(c.logger, runID, result.ID, time.Since(startTime))
	return result, nil
}

// Abort cancels the in-flight run, which then ends in failed("cancelled").
// It is a no-op when no run is active.
func (c *Coordinator) Abort() {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	if c.cancel != nil {
		c.logger.Info("Aborting workflow run", "stage", c.store.Current().Stage)
		c.cancel()
	}
}

// Reset returns a finished workflow to idle.
// It fails with a busy error while a run is in flight. Calling it before Run is
// optional: Run started from complete or failed resets on its own.
func (c *Coordinator) Reset() error {
	if !c.running.CompareAndSwap(false, true) {
		return lib.ErrRunInProgress(string(c.store.Current().Stage))
	}
	defer c.running.Store(false)

	current := c.store.Current()
	switch {
	case current.Stage.IsActive():
		return lib.ErrRunInProgress(string(current.Stage))
	case current.Stage.IsTerminal():
		return c.store.Transition(models.IdleState())
	default:
		return nil
	}
}

func (c *Coordinator) execute(ctx context.Context, runID string, req models.SubmissionRequest, runSpan trace.Span) (*models.AnalysisResult, error) {
	base := models.IdleState()
	base.RunID = runID
	base.FileName = req.FileName

	// Validate locally; a rejected document never reaches the network
	if err := c.limits.Validate(req); err != nil {
		return nil, c.fail(ctx, base, "validate", err)
	}

	// Upload
	c.publish(models.UploadingState(base, 0))
	var doc *models.TaskReference
	err := c.runStage(ctx, models.StageUploading, runID, func(ctx context.Context) error {
		var err error
		doc, err = c.uploader.Submit(ctx, req, func(p int) {
			c.publish(models.UploadingState(c.store.Current(), p))
		})
		return err
	})
	if err != nil {
		return nil, c.fail(ctx, c.store.Current(), string(models.StageUploading), err)
	}
	c.metrics.AddUploadBytes(req.Size)
	runSpan.SetAttributes(attribute.String(traceAttrDocumentID, doc.DocumentID))
	c.publish(models.AwaitingTaskState(c.store.Current(), *doc))

	// Task lookup
	var taskID string
	err = c.runStage(ctx, models.StageAwaitingTask, runID, func(ctx context.Context) error {
		var err error
		taskID, err = c.tasks.LookupTask(ctx, doc.DocumentID)
		return err
	})
	if err != nil {
		return nil, c.fail(ctx, c.store.Current(), string(models.StageAwaitingTask), err)
	}
	runSpan.SetAttributes(attribute.String(traceAttrTaskID, taskID))

	// Poll
	var handle *models.JobHandle
	err = c.runStage(ctx, models.StagePolling, runID, func(ctx context.Context) error {
		var err error
		handle, err = c.poller.Poll(ctx, taskID, c.pollInterval, c.pollTimeout, func(h models.JobHandle) {
			c.metrics.IncPollTick(string(h.Status))
			c.publish(models.PollingState(c.store.Current(), taskID, h))
		})
		return err
	})
	if err != nil {
		return nil, c.fail(ctx, c.store.Current(), string(models.StagePolling), err)
	}

	analysisID := handle.AnalysisID()
	if analysisID == "" {
		err := lib.ErrMissingReference("poll", "result reference missing")
		return nil, c.fail(ctx, c.store.Current(), string(models.StagePolling), err)
	}
	runSpan.SetAttributes(attribute.String(traceAttrAnalysisID, analysisID))

	// Fetch
	c.publish(models.FetchingState(c.store.Current()))
	var result *models.AnalysisResult
	err = c.runStage(ctx, models.StageFetching, runID, func(ctx context.Context) error {
		var err error
		result, err = c.analyses.GetAnalysis(ctx, analysisID)
		return err
	})
	if err != nil {
		return nil, c.fail(ctx, c.store.Current(), string(models.StageFetching), err)
	}

	c.publish(models.CompleteState(c.store.Current(), *result))
	return result, nil
}

// runStage wraps one stage with a span, timing metrics and stage logs
func (c *Coordinator) runStage(ctx context.Context, stage models.Stage, runID string, fn func(context.Context) error) error {
	startTime := time.Now()
	lib.LogStageStart(c.logger, string(stage), runID)

	stageCtx, span := startStageSpan(ctx, c.tracer, stage, runID)
	err := fn(stageCtx)
	markSpanResult(span, err)
	span.End()

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveStageDuration(string(stage), status, time.Since(startTime))

	if err == nil {
		lib.LogStageComplete(c.logger, string(stage), runID, time.Since(startTime))
	}
	return err
}

// fail moves the workflow to failed and returns the classified error.
// Errors raised after the run was cancelled are reported as cancellation.
func (c *Coordinator) fail(ctx context.Context, prev models.WorkflowState, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !lib.IsKind(err, lib.KindCancelled) {
		err = lib.ErrCancelled(stage, ctxErr)
	}
	wfErr := lib.ClassifyError(stage, err)

	c.metrics.IncStageFailure(stage, string(wfErr.Kind))
	lib.LogStageFailed(c.logger, stage, prev.RunID, wfErr)

	c.publish(models.FailedState(prev, lib.Reason(wfErr), wfErr))
	return wfErr
}

// publish applies a transition; the coordinator only produces valid ones
func (c *Coordinator) publish(next models.WorkflowState) {
	if err := c.store.Transition(next); err != nil {
		c.logger.Error("Failed to publish workflow state", "stage", next.Stage, "error", err)
	}
}

func (c *Coordinator) setCancel(cancel context.CancelFunc) {
	c.cancelMu.Lock()
	defer c.cancelMu.Unlock()
	c.cancel = cancel
}
