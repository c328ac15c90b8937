package models

import "time"

// Stage tags the active variant of a WorkflowState
type Stage string

const (
	StageIdle         Stage = "idle"
	StageUploading    Stage = "uploading"
	StageAwaitingTask Stage = "awaiting_task"
	StagePolling      Stage = "polling"
	StageFetching     Stage = "fetching"
	StageComplete     Stage = "complete"
	StageFailed       Stage = "failed"
)

// stageOrder is the position of each stage along the pipeline
var stageOrder = map[Stage]int{
	StageIdle:         0,
	StageUploading:    1,
	StageAwaitingTask: 2,
	StagePolling:      3,
	StageFetching:     4,
	StageComplete:     5,
}

// IsValidStage checks if the stage is recognized
func IsValidStage(s Stage) bool {
	_, ok := stageOrder[s]
	return ok || s == StageFailed
}

// IsTerminal reports whether the stage is absorbing
func (s Stage) IsTerminal() bool {
	return s == StageComplete || s == StageFailed
}

// IsActive reports whether a run is in flight in this stage
func (s Stage) IsActive() bool {
	return s != StageIdle && !s.IsTerminal()
}

// CanTransitionTo checks if a state transition is valid
// Valid transitions:
//
//	idle -> uploading -> awaiting_task -> polling -> fetching -> complete
//	uploading -> uploading (progress), polling -> polling (new job handle)
//	any non-terminal -> failed
//	complete | failed -> idle (reset)
func (s Stage) CanTransitionTo(next Stage) bool {
	if !IsValidStage(s) || !IsValidStage(next) {
		return false
	}
	if s.IsTerminal() {
		return next == StageIdle
	}
	if next == StageFailed {
		return true
	}
	if s == next {
		return s == StageUploading || s == StagePolling
	}
	return stageOrder[next] == stageOrder[s]+1
}

// WorkflowState is an observable snapshot of a run.
// Stage selects the variant; Progress, Job, Result and Reason/Err are only
// meaningful for uploading, polling, complete and failed respectively.
type WorkflowState struct {
	Stage Stage `json:"stage"`

	Progress int             `json:"progress,omitempty"`
	Job      *JobHandle      `json:"job,omitempty"`
	Result   *AnalysisResult `json:"result,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Err      error           `json:"-"`

	// Accumulated run data
	RunID     string         `json:"run_id,omitempty"`
	FileName  string         `json:"file_name,omitempty"`
	Document  *TaskReference `json:"document,omitempty"`
	TaskID    string         `json:"task_id,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IdleState returns the initial state
func IdleState() WorkflowState {
	return WorkflowState{Stage: StageIdle, UpdatedAt: time.Now()}
}

// UploadingState returns a new state with upload progress clamped to [0,100]
// Pure function - returns new instance, does not mutate prev
func UploadingState(prev WorkflowState, progress int) WorkflowState {
	next := carry(prev, StageUploading)
	next.Progress = clampProgress(progress)
	return next
}

// AwaitingTaskState returns a new state holding the uploaded document reference
func AwaitingTaskState(prev WorkflowState, doc TaskReference) WorkflowState {
	next := carry(prev, StageAwaitingTask)
	next.Document = &doc
	return next
}

// PollingState returns a new state holding the latest job snapshot
func PollingState(prev WorkflowState, taskID string, job JobHandle) WorkflowState {
	next := carry(prev, StagePolling)
	next.TaskID = taskID
	next.Job = &job
	return next
}

// FetchingState returns a new state while the analysis result is downloaded
func FetchingState(prev WorkflowState) WorkflowState {
	next := carry(prev, StageFetching)
	next.Job = prev.Job
	return next
}

// CompleteState returns the terminal success state
func CompleteState(prev WorkflowState, result AnalysisResult) WorkflowState {
	next := carry(prev, StageComplete)
	next.Job = prev.Job
	next.Result = &result
	return next
}

// FailedState returns the terminal failure state
func FailedState(prev WorkflowState, reason string, err error) WorkflowState {
	next := carry(prev, StageFailed)
	next.Job = prev.Job
	next.Reason = reason
	next.Err = err
	return next
}

// carry copies the accumulated run data into a fresh variant
func carry(prev WorkflowState, stage Stage) WorkflowState {
	return WorkflowState{
		Stage:     stage,
		RunID:     prev.RunID,
		FileName:  prev.FileName,
		Document:  prev.Document,
		TaskID:    prev.TaskID,
		UpdatedAt: time.Now(),
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
