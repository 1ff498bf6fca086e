package health

import "context"

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AIChecker checks the AI provider.
type AIChecker interface {
	HealthCheck(ctx context.Context) error
}
