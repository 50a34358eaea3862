package domain

// State is a step of one generation cycle.
type State string

const (
	StateIdle           State = "idle"
	StateAwaitingTrivia State = "awaiting_trivia"
	StateAwaitingImage  State = "awaiting_image"
	StateRendered       State = "rendered"
)

// Status is the progress text shown while the cycle sits in s.
func (s State) Status() string {
	switch s {
	case StateAwaitingTrivia:
		return "Crafting witty wisdom..."
	case StateAwaitingImage:
		return "Painting masterpiece..."
	default:
		return ""
	}
}
