package apply

// Status is the phase of the tracked wallpaper change.
type Status int

const (
	StatusIdle Status = iota
	StatusApplying
	StatusApplied
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusApplying:
		return "applying"
	case StatusApplied:
		return "applied"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of the coordinator. Path is the file being or last
// applied.
type State struct {
	Status Status
	Path   string
	Err    error
}

// Result is what an apply handle resolves with.
type Result struct {
	Path string
	Err  error
}
