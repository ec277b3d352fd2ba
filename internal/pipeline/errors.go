package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures
type Kind int

const (
	// KindClassificationParse means the identifier's completion was not a valid match list
	KindClassificationParse Kind = iota + 1
	// KindCompletionService means the completion service call itself failed
	KindCompletionService
	// KindGenerationFailed means no answer could be produced
	KindGenerationFailed
)

func (k Kind) String() string {
	switch k {
	case KindClassificationParse:
		return "ClassificationParseError"
	case KindCompletionService:
		return "CompletionServiceError"
	case KindGenerationFailed:
		return "GenerationFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels for errors.Is
var (
	ErrClassificationParse = errors.New("classification response unparsable")
	ErrCompletionService   = errors.New("completion service error")
	ErrGenerationFailed    = errors.New("generation failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindClassificationParse:
		return ErrClassificationParse
	case KindCompletionService:
		return ErrCompletionService
	case KindGenerationFailed:
		return ErrGenerationFailed
	}
	return nil
}

// Stage names
const (
	StageIdentify = "identify"
	StageGenerate = "generate"
)

// Error is returned by the identifier and the generator. Raw holds the
// completion text that could not be used, when there was one.
type Error struct {
	Kind  Kind
	Stage string
	Raw   string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Stage, e.Kind.sentinel())
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf reports the Kind of the outermost *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
