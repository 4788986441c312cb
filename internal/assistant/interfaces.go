package assistant

import "context"

// RemoteClient is the remote reasoning endpoint consumed by the generator.
// Implementations make exactly one attempt per call and classify failures
// with the ErrRemote* sentinels.
type RemoteClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FleetProvider supplies vehicle data bundles for a driver. A missing driver
// yields a typed not-found error, distinct from transport failures.
type FleetProvider interface {
	VehicleBundle(ctx context.Context, driverID string) (*DataBundle, error)
	VehicleIssues(ctx context.Context, vehicleID string) ([]VehicleIssue, error)
}
