package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransient     = errors.New("transient failure")
	ErrUnprocessable = errors.New("unprocessable input")
	ErrEnvironment   = errors.New("environment error")
	ErrPlanning      = errors.New("planning error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrMetadata      = errors.New("metadata error")
	ErrTimeout       = errors.New("timeout")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether the stage pipeline may re-attempt the
// operation that produced err. Unprocessable input, planning, validation,
// and configuration failures are terminal; everything else is assumed to be
// an environmental hiccup worth a bounded retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrUnprocessable),
		errors.Is(err, ErrPlanning),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

// IsFatal reports whether err should abort the whole run rather than fail a
// single book.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPlanning) || errors.Is(err, ErrEnvironment)
}

// ErrorDetails carries the presentation-safe parts of a classified error.
type ErrorDetails struct {
	Marker  error
	Message string
}

// Details extracts a human-readable message from a wrapped error, stripping
// the sentinel prefix so summaries do not repeat the marker text.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	details := ErrorDetails{Message: err.Error()}
	for _, marker := range []error{
		ErrTransient,
		ErrUnprocessable,
		ErrEnvironment,
		ErrPlanning,
		ErrValidation,
		ErrConfiguration,
		ErrMetadata,
		ErrTimeout,
		ErrExternalTool,
	} {
		if !errors.Is(err, marker) {
			continue
		}
		details.Marker = marker
		prefix := marker.Error() + ": "
		if strings.HasPrefix(details.Message, prefix) {
			details.Message = strings.TrimPrefix(details.Message, prefix)
		}
		break
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
