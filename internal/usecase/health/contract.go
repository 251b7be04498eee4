package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks that a model generation can be served.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
