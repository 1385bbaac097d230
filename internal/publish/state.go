package publish

// State is the phase a Publisher is in
type State string

const (
	StateIdle               State = "idle"
	StateDeleting           State = "deleting"
	StateWaitingForDeletion State = "waiting_for_deletion"
	StateUploading          State = "uploading"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// allowed lists the legal transitions. No phase is entered twice.
var allowed = map[State][]State{
	StateIdle:               {StateDeleting, StateDone, StateFailed},
	StateDeleting:           {StateWaitingForDeletion, StateFailed},
	StateWaitingForDeletion: {StateUploading, StateFailed},
	StateUploading:          {StateDone, StateFailed},
}

// CanTransition reports whether from -> to is legal
func CanTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a run
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
