package domain

import "errors"

var (
	ErrTransport         = errors.New("transport failure")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnsupportedModel  = errors.New("unsupported model")
)

// StageError reports which step of a cycle failed.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	switch e.Stage {
	case StateAwaitingTrivia:
		return "Trivia generation failed: " + e.Err.Error()
	case StateAwaitingImage:
		return "Image generation failed: " + e.Err.Error()
	default:
		return "Card composition failed: " + e.Err.Error()
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}
