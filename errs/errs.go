// Package errs defines the fatal error kinds the tax-lot engine can raise.
//
// None of these are recoverable locally: they surface unchanged to the
// caller, wrapped with context via fmt.Errorf's %w so errors.As still finds
// the underlying kind.
package errs

import "fmt"

// AssetNotFoundError is raised when a ticker or name lookup against an
// asset.Registry fails.
type AssetNotFoundError struct {
	Key string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("asset not found: %q", e.Key)
}

// NewAssetNotFound builds an AssetNotFoundError for the given lookup key.
func NewAssetNotFound(key string) error {
	return &AssetNotFoundError{Key: key}
}

// NoMatchingPoolError is raised when a sell transaction finds no open lot
// of the sold asset. It indicates the orderbook sold an asset before
// acquiring it.
type NoMatchingPoolError struct {
	Asset string
}

func (e *NoMatchingPoolError) Error() string {
	return fmt.Sprintf("no matching open lot for asset %q", e.Asset)
}

// NewNoMatchingPool builds a NoMatchingPoolError for the given asset ticker.
func NewNoMatchingPool(asset string) error {
	return &NoMatchingPoolError{Asset: asset}
}

// InvariantViolationError is raised when an internal invariant the engine
// relies on does not hold: a split produced a non-positive amount, a wash
// pairing failed to zero out net gain, or a consolidation pass changed an
// aggregate it should have preserved.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}

// NewInvariantViolation builds an InvariantViolationError with the given detail.
func NewInvariantViolation(detail string) error {
	return &InvariantViolationError{Detail: detail}
}

// IncorrectPoolFormatError is raised when a row of input data cannot be
// coerced into the expected shape (a blank numeric column, an unparsable
// date, a malformed UUID, and so on).
type IncorrectPoolFormatError struct {
	Detail string
}

func (e *IncorrectPoolFormatError) Error() string {
	return fmt.Sprintf("incorrect pool format: %s", e.Detail)
}

// NewIncorrectPoolFormat builds an IncorrectPoolFormatError with the given detail.
func NewIncorrectPoolFormat(detail string) error {
	return &IncorrectPoolFormatError{Detail: detail}
}
