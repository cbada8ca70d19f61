package system

import "errors"

var (
	// ErrNodeOutOfRange is returned when a primitive stamp addresses a node beyond the system size.
	ErrNodeOutOfRange = errors.New("system: node index out of range")
	// ErrNoSlot is returned when an increment or zeroise targets a position absent from the pattern.
	ErrNoSlot = errors.New("system: element not in compressed pattern")
	// ErrReuseDisabled is returned by in-place updates when the reuse tier is below ReuseCompressed.
	ErrReuseDisabled = errors.New("system: compressed matrix reuse disabled")
	// ErrSingular is returned when the factorization found a singular column.
	ErrSingular = errors.New("system: matrix is singular")
	// ErrFactorization is returned when the kernel failed for a reason other than singularity.
	ErrFactorization = errors.New("system: factorization failed")
	// ErrNotFactored is returned by Solve before a successful factorization.
	ErrNotFactored = errors.New("system: matrix is not factored")
	// ErrSizeMismatch is returned when a caller buffer is too small.
	ErrSizeMismatch = errors.New("system: buffer size mismatch")
	// ErrEmptyMatrix is returned when exporting a matrix without nonzeros.
	ErrEmptyMatrix = errors.New("system: matrix has no nonzeros")
	ErrBadPrimitive = errors.New("system: primitive block does not match order")
)
