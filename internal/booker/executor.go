package booker

import (
	"context"

	"github.com/nhle/booking-agent/internal/model"
)

// Executor performs the remote booking transaction: authenticate,
// navigate, fill the booking form, submit, and read back a
// confirmation reference or an error surface.
//
// Contract: at most one attempt per BookingRequest per call, no
// internal silent retry that could double-book. Expected failures
// (rejected credentials, missing UI elements, timeouts) come back as a
// failed BookingOutcome; an error return is reserved for the
// unexpected and is converted to an internal-error outcome by the
// caller.
type Executor interface {
	Execute(ctx context.Context, req model.BookingRequest) (model.BookingOutcome, error)
}
