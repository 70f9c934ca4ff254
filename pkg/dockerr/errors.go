// Package dockerr collects the error kinds spec.md §7 enumerates that are
// not already implied by a more specific package (object.ErrNotFound,
// object.ErrCorruptTree, and object.ErrCorruptStarlog cover NotFound and
// Corrupt), plus the OpError type that refs, checkout, object, and repo wrap
// kind-carrying failures in; other failures there are plain fmt.Errorf
// errors. Callers check a specific kind
// with errors.Is(err, dockerr.ErrCourseNotFound) and recover the operation
// name and cause with errors.As(err, &opErr).
package dockerr

import (
	"errors"
	"fmt"
)

var (
	// ErrHelmMalformed: .dock/HELM is not in "link: <course-path>" form.
	ErrHelmMalformed = errors.New("helm malformed")

	// ErrNoStarlogYet: the current course exists but has recorded no
	// starlog (its ref file is empty).
	ErrNoStarlogYet = errors.New("no starlog yet")

	// ErrBlobMissing: checkout encountered a tree entry whose blob is
	// absent from the object store.
	ErrBlobMissing = errors.New("blob missing from object store")

	// ErrRefInUse: attempted to delete the currently active course.
	ErrRefInUse = errors.New("course is currently active")

	// ErrRefReserved: attempted to delete the reserved "core" course.
	ErrRefReserved = errors.New("course is reserved")

	// ErrInvalidHash: a hash did not have the required 64-hex-char shape.
	ErrInvalidHash = errors.New("invalid hash")

	// ErrCourseNotFound: helm (or an explicit request) named a course
	// that has no ref file.
	ErrCourseNotFound = errors.New("course not found")

	// ErrIOError: a filesystem operation (mkdir, read, write, rename)
	// backing the object store or ref store failed for reasons other
	// than a missing path.
	ErrIOError = errors.New("i/o error")
)

// OpError is the wrapper Wrap builds for a failed operation:
// the operation that failed, the sentinel kind it falls under (nil if none
// of the above fits), and the underlying cause. Kind and Err are often the
// same value — a course lookup that fails outright has nothing more to say
// than "course not found" — but Err carries a lower-level cause (a read
// failure, a malformed payload) when there is one.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	if e.Kind != nil && !errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause, so errors.Is/errors.As keep working
// through a chain of OpErrors and whatever they wrap.
func (e *OpError) Unwrap() error { return e.Err }

// Is reports whether e's declared Kind matches target, so
// errors.Is(err, dockerr.ErrCourseNotFound) succeeds even when Err is a
// lower-level cause (e.g. an *os.PathError) rather than the sentinel
// itself.
func (e *OpError) Is(target error) bool {
	return e.Kind != nil && errors.Is(e.Kind, target)
}

// Wrap builds an *OpError for operation op. kind should be one of the
// sentinels above, or nil when the failure isn't one of them. err is the
// underlying cause; if err is nil, kind itself becomes the cause (the
// common case: the sentinel is the whole story). Wrap returns nil if both
// are nil, so it is safe to call as `return dockerr.Wrap(op, kind, err)` at
// the end of a function that may or may not have failed.
func Wrap(op string, kind error, err error) error {
	if err == nil {
		err = kind
	}
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Err: err}
}
