package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrMissingInput        = errors.New("input file required")
	ErrInputTooLarge       = errors.New("input too large")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrLanguageMismatch    = errors.New("language mismatch")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// ConfigError reports an option that cannot be honoured.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// StoreUnavailableError is returned when the connectivity check fails.
type StoreUnavailableError struct {
	Backend string
	Err     error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Backend, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

func (e *StoreUnavailableError) Is(target error) bool { return target == ErrStoreUnavailable }

// LanguageMismatchError is returned when the detected document language
// differs from the configured one.
type LanguageMismatchError struct {
	Detected   string
	Configured string
}

func (e *LanguageMismatchError) Error() string {
	return fmt.Sprintf("document language %q differs from configured language %q", e.Detected, e.Configured)
}

func (e *LanguageMismatchError) Is(target error) bool { return target == ErrLanguageMismatch }

// UnsupportedLanguageError is returned for a language selector outside the
// supported set.
type UnsupportedLanguageError struct {
	Lang string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q", e.Lang)
}

func (e *UnsupportedLanguageError) Is(target error) bool { return target == ErrUnsupportedLanguage }
