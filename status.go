package providers

import (
	"context"
	"time"
)

// Status is a point-in-time snapshot of one provider's usability, produced
// by running its Setup and Test sequence.
type Status struct {
	// Provider is the identifier that was checked.
	Provider ProviderID `json:"provider"`

	// Healthy is true when both Setup and Test succeeded.
	Healthy bool `json:"healthy"`

	// Error holds the failure rendering when Healthy is false.
	Error string `json:"error,omitempty"`

	// Latency is how long the check took.
	Latency time.Duration `json:"latency"`
}

// Check runs Setup and Test for one provider and reports the outcome. It
// never returns an error; failures are recorded in the Status.
func Check(ctx context.Context, id ProviderID) (status Status) {
	start := time.Now()

	status = Status{Provider: id}
	defer func() {
		status.Latency = time.Since(start)
	}()

	p, err := New(id)
	if err == nil {
		err = p.Setup()
	}
	if err == nil {
		err = p.Test(ctx)
	}
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Healthy = true
	return status
}

// CheckAll checks each provider in turn and returns one Status per id, in
// input order. Checks are sequential so a rate-limited backend doesn't bleed
// into its neighbors.
func CheckAll(ctx context.Context, ids []ProviderID) []Status {
	statuses := make([]Status, 0, len(ids))
	for _, id := range ids {
		statuses = append(statuses, Check(ctx, id))
	}
	return statuses
}
