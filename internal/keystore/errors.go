package keystore

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers match with errors.Is; returned errors carry the
// detail after the sentinel.
var (
	// ErrInvalidArgument reports a missing handle, a malformed ticket or an
	// identifier outside its valid range.
	ErrInvalidArgument = errors.New("keystore: invalid argument")
	// ErrNotFound reports a well-formed identifier with no live entity.
	ErrNotFound = errors.New("keystore: not found")
	// ErrOutOfCapacity reports that the context or slot ceiling is reached.
	ErrOutOfCapacity = errors.New("keystore: out of capacity")
	// ErrOutOfMemory reports that storage for a new entity could not be obtained.
	ErrOutOfMemory = errors.New("keystore: out of memory")
	// ErrTicketInUse reports an allocation for a ticket that already has a
	// live context while ticket uniqueness is enforced.
	ErrTicketInUse = fmt.Errorf("%w: client ticket already registered", ErrInvalidArgument)
)
