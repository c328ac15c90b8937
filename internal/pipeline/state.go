package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/uzzysan/Klauzule-zakazane/internal/lib"
	"github.com/uzzysan/Klauzule-zakazane/internal/models"
)

// StateStore holds the current WorkflowState and fans transitions out to observers.
// Only the Coordinator calls Transition; everyone else reads.
type StateStore struct {
	mu          sync.Mutex
	state       models.WorkflowState
	subscribers map[uint64]func(models.WorkflowState)
	nextID      uint64

	// publishMu keeps notifications in transition order
	publishMu sync.Mutex

	logger *lib.Logger
}

// NewStateStore creates a store in the idle state
func NewStateStore(logger *lib.Logger) *StateStore {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &StateStore{
		state:       models.IdleState(),
		subscribers: make(map[uint64]func(models.WorkflowState)),
		logger:      logger,
	}
}

// Current returns a snapshot of the current state
func (s *StateStore) Current() models.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transition replaces the current state and notifies subscribers synchronously.
// Invalid transitions are rejected. An upload progress update that would not
// increase the reported percentage is dropped without notification.
func (s *StateStore) Transition(next models.WorkflowState) error {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	current := s.state
	if !current.Stage.CanTransitionTo(next.Stage) {
		s.mu.Unlock()
		s.logger.Error("Rejected workflow transition", "from", current.Stage, "to", next.Stage)
		return fmt.Errorf("invalid workflow transition from %s to %s", current.Stage, next.Stage)
	}
	if current.Stage == models.StageUploading && next.Stage == models.StageUploading &&
		next.Progress <= current.Progress {
		s.mu.Unlock()
		return nil
	}
	s.state = next
	subscribers := make([]func(models.WorkflowState), 0, len(s.subscribers))
	for _, id := range s.sortedIDsLocked() {
		subscribers = append(subscribers, s.subscribers[id])
	}
	s.mu.Unlock()

	s.logger.Debug("Workflow transition",
		"from", current.Stage,
		"to", next.Stage,
		"run_id", next.RunID,
		"progress", next.Progress)

	for _, fn := range subscribers {
		fn(next)
	}
	return nil
}

// Subscribe registers fn to be called with every state after a transition.
// Calls happen on the transitioning goroutine, in order. The returned function
// removes the subscription.
func (s *StateStore) Subscribe(fn func(models.WorkflowState)) func() {
	s.mu.Lock()
	id := s.addLocked(fn)
	s.mu.Unlock()
	return func() { s.remove(id) }
}

// Watch returns a channel that receives the current state followed by every later
// state, in order and without drops. The channel is closed when ctx is done.
func (s *StateStore) Watch(ctx context.Context) <-chan models.WorkflowState {
	out := make(chan models.WorkflowState)

	var (
		queueMu sync.Mutex
		queue   []models.WorkflowState
		notify  = make(chan struct{}, 1)
	)
	push := func(st models.WorkflowState) {
		queueMu.Lock()
		queue = append(queue, st)
		queueMu.Unlock()
		select {
		case notify <- struct{}{}:
		default:
		}
	}

	// Register and snapshot under one lock so no transition falls in between
	s.mu.Lock()
	push(s.state)
	id := s.addLocked(push)
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer s.remove(id)

		for {
			queueMu.Lock()
			pending := queue
			queue = nil
			queueMu.Unlock()

			for _, st := range pending {
				select {
				case out <- st:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *StateStore) addLocked(fn func(models.WorkflowState)) uint64 {
	s.nextID++
	s.subscribers[s.nextID] = fn
	return s.nextID
}

func (s *StateStore) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

// sortedIDsLocked returns subscriber ids in registration order
func (s *StateStore) sortedIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
