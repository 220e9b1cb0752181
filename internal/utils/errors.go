package utils

import (
	"errors"
	"fmt"
)

// InsufficientHistoryError signals that a symbol does not carry enough bars
// for the requested indicators or backtest window. It is fatal for that
// symbol's call only and must never abort a batch.
type InsufficientHistoryError struct {
	Symbol   string
	Required int
	Got      int
	Message  string
}

// Error returns the error message string.
func (e *InsufficientHistoryError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Symbol, e.Message)
	}
	return fmt.Sprintf("%s: insufficient history: need %d bars, got %d", e.Symbol, e.Required, e.Got)
}

// NewInsufficientHistoryError creates an InsufficientHistoryError for a
// symbol with the bar counts involved.
func NewInsufficientHistoryError(symbol string, required, got int) error {
	return &InsufficientHistoryError{Symbol: symbol, Required: required, Got: got}
}

// NewInsufficientHistoryErrorf creates an InsufficientHistoryError with a
// formatted message.
func NewInsufficientHistoryErrorf(symbol, format string, args ...interface{}) error {
	return &InsufficientHistoryError{Symbol: symbol, Message: fmt.Sprintf(format, args...)}
}

// InvalidSnapshotError signals a quote or candle payload missing required
// fields. Fatal for the affected symbol only.
type InvalidSnapshotError struct {
	Symbol  string
	Message string
}

// Error returns the error message string.
func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("%s: invalid snapshot: %s", e.Symbol, e.Message)
}

// NewInvalidSnapshotError creates a new InvalidSnapshotError.
func NewInvalidSnapshotError(symbol, message string) error {
	return &InvalidSnapshotError{Symbol: symbol, Message: message}
}

// ComputationError signals an unexpected arithmetic failure inside the
// analytical core. Treated as a local, per-symbol failure.
type ComputationError struct {
	Op      string
	Message string
}

// Error returns the error message string.
func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed in %s: %s", e.Op, e.Message)
}

// NewComputationErrorf creates a new ComputationError with a formatted
// message.
func NewComputationErrorf(op, format string, args ...interface{}) error {
	return &ComputationError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsSymbolError reports whether err is one of the per-symbol failure types
// that a batch aggregator should swallow rather than propagate.
func IsSymbolError(err error) bool {
	var ih *InsufficientHistoryError
	var is *InvalidSnapshotError
	var ce *ComputationError
	return errors.As(err, &ih) || errors.As(err, &is) || errors.As(err, &ce)
}
