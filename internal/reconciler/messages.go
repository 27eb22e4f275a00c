package reconciler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed indicates a queue payload that cannot be parsed. Malformed
// messages are logged, counted, and dropped; they are never retried.
var ErrMalformed = errors.New("malformed message")

// Result is a parsed classification result delivery.
type Result struct {
	ID         int64
	Label      string
	Confidence float64
}

// Failure is a parsed worker error delivery.
type Failure struct {
	ID      int64
	Message string
}

// ParseResult parses the "<id>:<result>:<confidence>" wire format. Exactly
// three colon-delimited fields are required; embedded colons in the result
// label are not supported by the wire format.
func ParseResult(payload string) (Result, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 3 {
		return Result{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformed, len(parts))
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: non-integer id %q", ErrMalformed, parts[0])
	}

	confidence, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: non-numeric confidence %q", ErrMalformed, parts[2])
	}
	if confidence < 0 || confidence > 1 {
		return Result{}, fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformed, confidence)
	}

	return Result{
		ID:         id,
		Label:      parts[1],
		Confidence: confidence,
	}, nil
}

// ParseFailure parses the "<id>:<errorMessage>" wire format. The payload is
// split into at most two fields so the error text may itself contain colons.
func ParseFailure(payload string) (Failure, error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return Failure{}, fmt.Errorf("%w: want 2 fields, got %d", ErrMalformed, len(parts))
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Failure{}, fmt.Errorf("%w: non-integer id %q", ErrMalformed, parts[0])
	}

	return Failure{
		ID:      id,
		Message: parts[1],
	}, nil
}
