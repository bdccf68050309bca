package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackgods/slotwatch/internal/appointment"
)

// Dispatcher fans one eligible batch out to every configured transport.
type Dispatcher struct {
	transports []Transport
}

func NewDispatcher(transports ...Transport) *Dispatcher {
	return &Dispatcher{transports: transports}
}

func (d *Dispatcher) TransportCount() int {
	return len(d.transports)
}

// Dispatch sends the batch to all transports. The batch counts as delivered
// when at least one transport accepted it; per-transport failures are
// joined into the returned error either way, so the caller can log partial
// failures while still confirming delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, appts []appointment.Appointment) ([]appointment.Appointment, error) {
	if len(appts) == 0 || len(d.transports) == 0 {
		return nil, nil
	}

	delivered := false
	var errs []error
	for _, tr := range d.transports {
		if err := tr.Send(ctx, appts); err != nil {
			errs = append(errs, fmt.Errorf("%s transport: %w", tr.Name(), err))
			continue
		}
		delivered = true
	}

	if !delivered {
		return nil, errors.Join(errs...)
	}
	return appts, errors.Join(errs...)
}
