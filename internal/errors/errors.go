package errors

import (
	"errors"
	"fmt"
)

var ErrEventNotFound = errors.New("event not found")
var ErrTicketUnavailable = errors.New("ticket is not available")
var ErrInvalidCategory = errors.New("unknown ticket category")

// NoTicketToRemoveError reports that a basket holds no ticket matching the
// requested event and category. Storage failures are never folded into this
// type; they propagate wrapped so callers can tell the two apart.
type NoTicketToRemoveError struct {
	EventID  int64
	Category string
}

func (e *NoTicketToRemoveError) Error() string {
	return fmt.Sprintf("Event with id %d hasn't tickets for category: %s.", e.EventID, e.Category)
}

// IsNoTicketToRemove reports whether err is a NoTicketToRemoveError.
func IsNoTicketToRemove(err error) bool {
	var target *NoTicketToRemoveError
	return errors.As(err, &target)
}
