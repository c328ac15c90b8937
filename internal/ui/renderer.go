package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// Renderer turns a stream of workflow states into terminal feedback.
// Interactive mode draws a progress bar for the upload and a spinner while the job
// runs; plain mode prints one line per stage change and per upload quarter.
type Renderer struct {
	out         io.Writer
	interactive bool
	fileSize    int64

	bar         *ProgressBar
	spinner     *Spinner
	eta         *ETACalculator
	uploadStart time.Time

	lastStage    models.Stage
	lastJobLine  string
	lastQuarter  int
	lastProgress int
}

// NewRenderer creates a renderer for a document of fileSize bytes
func NewRenderer(out io.Writer, interactive bool, fileSize int64) *Renderer {
	return &Renderer{
		out:         out,
		interactive: interactive,
		fileSize:    fileSize,
		eta:         NewETACalculator(),
		lastQuarter: -1,
	}
}

// Consume renders states until a run reaches complete or failed, the channel
// closes or ctx is done
func (r *Renderer) Consume(ctx context.Context, states <-chan models.WorkflowState) error {
	for {
		select {
		case <-ctx.Done():
			r.stopIndicators(false)
			return ctx.Err()
		case st, ok := <-states:
			if !ok {
				r.stopIndicators(false)
				return nil
			}
			r.Render(st)
			if st.Stage.IsTerminal() && st.RunID != "" {
				return nil
			}
		}
	}
}

// Render draws a single state
func (r *Renderer) Render(st models.WorkflowState) {
	stageChanged := st.Stage != r.lastStage
	if stageChanged {
		r.leaveStage(r.lastStage, st)
		r.lastStage = st.Stage
	}

	switch st.Stage {
	case models.StageUploading:
		r.renderUpload(st, stageChanged)
	case models.StageAwaitingTask:
		if stageChanged {
			r.println("Document uploaded (%s), waiting for the analysis job", documentID(st))
		}
	case models.StagePolling:
		r.renderPoll(st, stageChanged)
	case models.StageFetching:
		if stageChanged {
			r.println("Job finished, fetching analysis")
		}
	case models.StageComplete:
		if st.Result != nil {
			r.println("✓ Analysis complete: %d flagged clause(s)", st.Result.TotalClausesFound)
		}
	case models.StageFailed:
		r.println("✗ Analysis failed: %s", st.Reason)
	}
}

func (r *Renderer) renderUpload(st models.WorkflowState, stageChanged bool) {
	if st.Progress < r.lastProgress && !stageChanged {
		return
	}
	r.lastProgress = st.Progress
	sent := r.fileSize * int64(st.Progress) / 100

	if stageChanged {
		r.uploadStart = time.Now()
		r.eta.Reset()
		if r.interactive {
			r.bar = NewProgressBarWithWriter(fmt.Sprintf("Uploading %s", st.FileName), r.out)
		} else {
			r.println("Uploading %s (%s)", st.FileName, FormatBytes(r.fileSize))
		}
	}
	r.eta.RecordProgress(sent)

	if r.interactive {
		if r.bar != nil {
			if eta, ok := r.eta.CalculateETA(r.fileSize, sent); ok && st.Progress < 100 {
				r.bar.Describe(fmt.Sprintf("Uploading %s (ETA %s)", st.FileName, FormatETA(eta)))
			}
			_ = r.bar.Set(st.Progress)
		}
		return
	}

	quarter := st.Progress / 25
	if quarter > r.lastQuarter {
		r.lastQuarter = quarter
		r.println("  upload %d%%", quarter*25)
	}
}

func (r *Renderer) renderPoll(st models.WorkflowState, stageChanged bool) {
	line := "Processing"
	if st.Job != nil {
		line = fmt.Sprintf("%s (%s)", models.StageDescription(st.Job.Stage()), st.Job.Status)
	}

	if r.interactive {
		if stageChanged || r.spinner == nil {
			r.spinner = NewSpinnerWithWriter(line, r.out)
			r.spinner.Start()
		} else {
			r.spinner.UpdateMessage(line)
		}
		r.lastJobLine = line
		return
	}

	if line != r.lastJobLine {
		r.lastJobLine = line
		r.println("  job %s: %s", st.TaskID, line)
	}
}

// leaveStage closes indicators belonging to the previous stage
func (r *Renderer) leaveStage(prev models.Stage, next models.WorkflowState) {
	success := next.Stage != models.StageFailed
	switch prev {
	case models.StageUploading:
		if r.bar != nil {
			if success {
				_ = r.bar.Finish()
			}
			_, _ = fmt.Fprintln(r.out)
			r.bar = nil
		}
		if success {
			r.println("Uploaded %s", UploadSummary(r.fileSize, time.Since(r.uploadStart).Seconds()))
		}
	case models.StagePolling:
		if r.spinner != nil {
			r.spinner.Stop(success)
			r.spinner = nil
		}
	}
}

func (r *Renderer) stopIndicators(success bool) {
	if r.bar != nil {
		_, _ = fmt.Fprintln(r.out)
		r.bar = nil
	}
	if r.spinner != nil {
		r.spinner.Stop(success)
		r.spinner = nil
	}
}

func (r *Renderer) println(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

func documentID(st models.WorkflowState) string {
	if st.Document == nil {
		return "unknown document"
	}
	return st.Document.DocumentID
}
