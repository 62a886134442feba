package workflow

// Phase identifies a workflow state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoadError
	PhaseCalendar
	PhaseForm
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoadError:
		return "load_error"
	case PhaseCalendar:
		return "calendar"
	case PhaseForm:
		return "form"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// State is one of Loading, LoadError, Calendar, Form, Success or Failed.
type State interface {
	Phase() Phase
}

// Loading is the initial state while the event type is fetched.
type Loading struct{}

// LoadError halts the session; no slot interaction is possible.
type LoadError struct{ Message string }

// Calendar lets the guest pick a day and a slot.
type Calendar struct{}

// Form collects guest details for the current selection.
type Form struct{}

// Success carries what the confirmation screen shows.
type Success struct {
	MeetingLink string
	GuestEmail  string
}

// Failed is a recoverable booking failure.
type Failed struct{ Message string }

func (Loading) Phase() Phase   { return PhaseLoading }
func (LoadError) Phase() Phase { return PhaseLoadError }
func (Calendar) Phase() Phase  { return PhaseCalendar }
func (Form) Phase() Phase      { return PhaseForm }
func (Success) Phase() Phase   { return PhaseSuccess }
func (Failed) Phase() Phase    { return PhaseError }
