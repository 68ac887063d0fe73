package checkout

//go:generate go tool stringer -type=State

// State is where a customer is in the order modal.
type State int

const (
	Idle State = iota
	Collecting
	Submitting
	Succeeded
	Failed
)

// Editable reports whether the form can be (re)submitted from s.
func (s State) Editable() bool {
	return s == Collecting || s == Failed
}
