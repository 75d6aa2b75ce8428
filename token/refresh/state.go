package refresh

// State is the coordinator's position in the refresh cycle.
type State int32

const (
	StateIdle State = iota
	StateRefreshing
	// StateFailed is held while a failed refresh logs the session out. The
	// coordinator returns to StateIdle once the logout has completed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}
