package internalerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"config", &ConfigError{Field: "span", Reason: "needs segmentation"}, ErrInvalidConfig},
		{"store", &StoreUnavailableError{Backend: "redis", Err: cause}, ErrStoreUnavailable},
		{"mismatch", &LanguageMismatchError{Detected: "fr", Configured: "en"}, ErrLanguageMismatch},
		{"unsupported", &UnsupportedLanguageError{Lang: "xx"}, ErrUnsupportedLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("run: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.sentinel)
			}
		})
	}
}

func TestStoreUnavailableUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &StoreUnavailableError{Backend: "sqlite", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	var target *StoreUnavailableError
	if !errors.As(fmt.Errorf("open: %w", err), &target) || target.Backend != "sqlite" {
		t.Error("errors.As should recover the typed error")
	}
}
