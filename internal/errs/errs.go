// Package errs declares the error kinds raised while compiling a study into
// an optimization problem.
//
// Every error returned by the compiler wraps exactly one of the sentinel
// kinds below, so callers can branch with errors.Is without parsing
// messages:
//
//	if errors.Is(err, errs.ErrConfiguration) {
//	    // fix the model or the data, then rebuild
//	}
//
// None of these errors are retryable. A build that fails returns no problem.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration reports an inconsistent model, network or data set:
	// missing or duplicated port field definitions, data indexing that does
	// not match the declared parameter, unresolved references.
	ErrConfiguration = errors.New("configuration error")

	// ErrUsage reports a programming error in the caller or in the
	// compiler itself: lookups before registration, double registration,
	// evaluating a variable where only parameters can be valued.
	ErrUsage = errors.New("usage error")

	// ErrUnsupported reports a declared but unimplemented feature.
	ErrUnsupported = errors.New("unsupported")

	// ErrArithmetic reports an illegal operation on linear expressions.
	ErrArithmetic = errors.New("arithmetic error")

	// ErrExport reports a failure while exporting problems to files.
	ErrExport = errors.New("export error")
)

// Configuration returns an error wrapping ErrConfiguration.
func Configuration(format string, args ...any) error {
	return wrap(ErrConfiguration, format, args...)
}

// Usage returns an error wrapping ErrUsage.
func Usage(format string, args ...any) error {
	return wrap(ErrUsage, format, args...)
}

// Unsupported returns an error wrapping ErrUnsupported.
func Unsupported(format string, args ...any) error {
	return wrap(ErrUnsupported, format, args...)
}

// Export returns an error wrapping ErrExport.
func Export(format string, args ...any) error {
	return wrap(ErrExport, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Collect folds a list of validation messages into a single error of the
// given kind. It returns nil when there is nothing to report.
func Collect(kind error, subject string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s:\n- %s", kind, subject, strings.Join(problems, "\n- "))
}
