package classifier

import (
	"context"

	"github.com/KasumiMercury/primind-focusguard/internal/domain"
)

// Request is the input handed to a classification capability.
type Request struct {
	Title    string
	Keywords []string
}

// Capability turns a window title into a verdict. Implementations are opaque.
type Capability interface {
	Classify(ctx context.Context, req Request) (domain.Verdict, error)
}

// Probe is implemented by capabilities whose availability is checked out of band.
type Probe interface {
	Probe(ctx context.Context) error
}

// PrimaryCapability is a remote capability with an out-of-band health check.
type PrimaryCapability interface {
	Capability
	Probe
}
