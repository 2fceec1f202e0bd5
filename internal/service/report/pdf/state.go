package pdf

import (
	"go.uber.org/zap"
)

// State is the stage an export has reached.
type State int

const (
	StateIdle State = iota
	StateContainerCreated
	StateComponentMounted
	StateStylesInjected
	StateBoundariesCollected
	StateRastered
	StatePdfAssembled
	StateCleaned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateContainerCreated:
		return "ContainerCreated"
	case StateComponentMounted:
		return "ComponentMounted"
	case StateStylesInjected:
		return "StylesInjected"
	case StateBoundariesCollected:
		return "BoundariesCollected"
	case StateRastered:
		return "Rastered"
	case StatePdfAssembled:
		return "PdfAssembled"
	case StateCleaned:
		return "Cleaned"
	default:
		return "Unknown"
	}
}

// exportRun tracks the state of one export call. The states it went through are logged when the
// run finishes, so a failed export shows how far it got.
type exportRun struct {
	state   State
	history []State
	logger  *zap.SugaredLogger
}

func newExportRun(logger *zap.SugaredLogger) *exportRun {
	return &exportRun{state: StateIdle, history: []State{StateIdle}, logger: logger}
}

func (r *exportRun) advance(next State) {
	r.logger.Debugw("pdf export transition", "from", r.state.String(), "to", next.String())
	r.state = next
	r.history = append(r.history, next)
}

// finish moves the run to Cleaned and logs the states it went through.
func (r *exportRun) finish() {
	r.advance(StateCleaned)

	path := make([]string, 0, len(r.history))
	for _, s := range r.history {
		path = append(path, s.String())
	}
	r.logger.Debugw("pdf export finished", "states", path)
}
