package summarizer

import (
	"context"
	"errors"
	"fmt"

	"newsbrief/internal/domain"
)

type Reason string

const (
	ReasonMissingCredentials Reason = "missing_credentials"
	ReasonEmptyPrompt        Reason = "empty_prompt"
	ReasonTimeout            Reason = "timeout"
	ReasonTransport          Reason = "transport"
	ReasonProviderStatus     Reason = "provider_status"
	ReasonEmptyOutput        Reason = "empty_output"
	ReasonRefused            Reason = "refused"
)

// GenerationError is returned by every Generator failure.
// errors.Is(err, domain.ErrGenerationFailed) holds for it.
type GenerationError struct {
	Provider string
	Reason   Reason
	// StatusCode is set for ReasonProviderStatus.
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status = %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *GenerationError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrGenerationFailed}
	}

	return []error{domain.ErrGenerationFailed, e.Err}
}

// ReasonOf reports the failure reason of a generation error. Errors that did
// not come from a Generator are classified by context state.
func ReasonOf(err error) Reason {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Reason
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	return ReasonTransport
}

func requestError(provider string, statusCode int, err error) *GenerationError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &GenerationError{Provider: provider, Reason: ReasonTimeout, Err: err}
	case statusCode != 0:
		return &GenerationError{
			Provider:   provider,
			Reason:     ReasonProviderStatus,
			StatusCode: statusCode,
			Err:        err,
		}
	default:
		return &GenerationError{Provider: provider, Reason: ReasonTransport, Err: err}
	}
}
