package pipelines

type RoutineState int

const (
	StateUnknown RoutineState = iota
	StateGenerating
	StateReady
)

func (s RoutineState) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	}
	return "unknown"
}
