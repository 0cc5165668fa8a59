package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an optional collaborator: the embedding provider, the
// content index, the interpretation provider.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
