package domain

import "sync"

// SubmitState is the lifecycle of the sign-up form's submit action.
type SubmitState string

const (
	StateIdle       SubmitState = "idle"
	StateSubmitting SubmitState = "submitting"
	StateSucceeded  SubmitState = "succeeded"
	StateFailed     SubmitState = "failed"
)

// SubmitMachine guards against overlapping submissions.
// The zero value is ready to use and starts Idle.
type SubmitMachine struct {
	mu    sync.Mutex
	state SubmitState
}

func (m *SubmitMachine) State() SubmitState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// Begin moves to Submitting. It fails with KindBusy while a submission is in flight.
func (m *SubmitMachine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateSubmitting {
		return &OpError{
			Op:   "submit.begin",
			Kind: KindBusy,
			Err:  ErrSubmissionInProgress,
		}
	}
	m.state = StateSubmitting
	return nil
}

// Finish records the terminal state for the attempt started by Begin.
func (m *SubmitMachine) Finish(res RegistrationResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if res.OK {
		m.state = StateSucceeded
		return
	}
	m.state = StateFailed
}
