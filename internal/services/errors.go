package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAuth          = errors.New("authentication failed")
	ErrNetwork       = errors.New("network error")
	ErrTemplate      = errors.New("template error")
	ErrRenderService = errors.New("render service error")
	ErrDispatch      = errors.New("dispatch error")
	ErrDisabled      = errors.New("disabled")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to the outcome label printed in session reports.
// Dispatch failures caused by rejected credentials stay DispatchError; the
// more specific markers are checked first otherwise.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDisabled):
		return "Disabled"
	case errors.Is(err, ErrDispatch):
		return "DispatchError"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrAuth):
		return "AuthError"
	case errors.Is(err, ErrTemplate):
		return "TemplateError"
	case errors.Is(err, ErrRenderService):
		return "RenderServiceError"
	case errors.Is(err, ErrNetwork):
		return "NetworkError"
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrValidation):
		return "ConfigError"
	default:
		return "Error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
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
