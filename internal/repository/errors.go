// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrInsufficientStock indicates that a conditional stock
// decrement matched zero rows at commit time (a recoverable race),
// while a StorageError with KindFatal wraps an infrastructure failure
// that retrying the request will not fix.
package repository

import (
    "errors"
    "fmt"
)

// ErrInsufficientStock is returned by OrderRepo.Place when the
// guarded decrement `stock = stock - qty WHERE … AND stock >= qty`
// affects zero rows. The whole order transaction is rolled back;
// handlers should translate this into an HTTP 409 and send the user
// back through checkout validation.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrUsernameExists is returned when an insert violates the unique
// username constraint. Handlers should translate this into 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when an insert violates the unique email
// constraint.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidStatus is returned by OrderRepo.UpdateStatus when the
// requested status is not one of the permitted enumeration values.
// No state is mutated.
var ErrInvalidStatus = errors.New("invalid order status")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot proceed
// because of dependent state, such as deleting a category that still
// has products. Handlers should translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrorKind classifies a StorageError so callers can decide whether
// the operation is worth retrying.
type ErrorKind int

const (
    // KindFatal marks infrastructure failures (connection lost,
    // statement error). Not retried by this layer; logged and
    // surfaced as a generic failure.
    KindFatal ErrorKind = iota
    // KindConflict marks expected, recoverable contention such as the
    // conditional stock decrement matching no rows.
    KindConflict
    // KindNotFound marks lookups that matched nothing.
    KindNotFound
)

// StorageError wraps a persistence failure with the operation name
// and entity that failed, so logs carry enough context without the
// handler re-deriving it.
type StorageError struct {
    Op   string    // e.g. "order.create"
    Kind ErrorKind // conflict / not-found / fatal
    Err  error
}

func (e *StorageError) Error() string {
    return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsConflict reports whether err is (or wraps) a KindConflict
// StorageError or one of the conflict sentinels.
func IsConflict(err error) bool {
    if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrConflict) {
        return true
    }
    var se *StorageError
    return errors.As(err, &se) && se.Kind == KindConflict
}

// IsNotFound reports whether err is a KindNotFound StorageError.
func IsNotFound(err error) bool {
    var se *StorageError
    return errors.As(err, &se) && se.Kind == KindNotFound
}
