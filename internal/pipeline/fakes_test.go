package pipeline

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

func quietLogger() *lib.Logger {
	return lib.NewLoggerWithWriter(lib.LogLevelError, io.Discard)
}

func testConfig() models.ProjectConfig {
	config := models.DefaultConfig()
	config.Workflow.PollIntervalMs = 5
	config.Workflow.PollTimeoutSeconds = 2
	config.Workflow.TaskLookupInitialDelayMs = 1
	config.Workflow.TaskLookupMaxBackoffMs = 5
	return config
}

func pdfRequest(size int) models.SubmissionRequest {
	return models.NewSubmission("umowa.pdf", models.MediaTypePDF, make([]byte, size), models.LanguagePolish, models.ModeOffline)
}

type fakeUploader struct {
	calls    atomic.Int32
	progress []int
	ref      *models.TaskReference
	err      error
}

func (f *fakeUploader) Submit(ctx context.Context, req models.SubmissionRequest, onProgress func(int)) (*models.TaskReference, error) {
	f.calls.Add(1)
	for _, p := range f.progress {
		onProgress(p)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.ref != nil {
		return f.ref, nil
	}
	return &models.TaskReference{DocumentID: "D1", FileName: req.FileName, SizeBytes: req.Size}, nil
}

type fakeTasks struct {
	taskID string
	err    error
}

func (f *fakeTasks) LookupTask(ctx context.Context, documentID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.taskID == "" {
		return "T1", nil
	}
	return f.taskID, nil
}

// fakePoller replays handles as ticks; a terminal handle ends the poll.
// With block set it waits for release or ctx after the ticks.
type fakePoller struct {
	handles []models.JobHandle
	block   bool
	release chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (f *fakePoller) Poll(ctx context.Context, jobID string, interval time.Duration, timeout time.Duration, onTick func(models.JobHandle)) (*models.JobHandle, error) {
	for _, h := range f.handles {
		h := h
		onTick(h)
		switch h.Status {
		case models.JobStatusCompleted:
			return &h, nil
		case models.JobStatusFailed:
			return nil, lib.ErrJobFailed(jobID, h.ErrorMessage())
		}
	}

	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
	}
	if !f.block {
		return nil, lib.ErrPollTimeout(jobID, timeout)
	}

	select {
	case <-f.release:
		h := models.JobHandle{ID: jobID, Status: models.JobStatusCompleted, Result: map[string]any{"analysis_identifier": "A1"}}
		onTick(h)
		return &h, nil
	case <-ctx.Done():
		return nil, lib.ErrCancelled("poll", ctx.Err())
	}
}

type fakeAnalyses struct {
	calls  atomic.Int32
	result *models.AnalysisResult
	err    error
}

func (f *fakeAnalyses) GetAnalysis(ctx context.Context, analysisID string) (*models.AnalysisResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.AnalysisResult{AnalysisSummary: models.AnalysisSummary{ID: analysisID, TotalClausesFound: 5}}, nil
}

func completedHandle(result map[string]any) models.JobHandle {
	return models.JobHandle{ID: "T1", Status: models.JobStatusCompleted, Result: result}
}

// recorder collects every published state in order
type recorder struct {
	mu     sync.Mutex
	states []models.WorkflowState
}

func (r *recorder) record(st models.WorkflowState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *recorder) all() []models.WorkflowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WorkflowState(nil), r.states...)
}

// stages returns the stage sequence with consecutive repeats collapsed
func (r *recorder) stages() []models.Stage {
	var out []models.Stage
	for _, st := range r.all() {
		if len(out) > 0 && out[len(out)-1] == st.Stage {
			continue
		}
		out = append(out, st.Stage)
	}
	return out
}
