package fleet

import (
	"context"

	"github.com/google/uuid"
	"github.com/vorexhq/fleet-assistant/internal/assistant"
)

// RepositoryInterface defines the data access layer for fleet records
type RepositoryInterface interface {
	GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverRow, error)
	GetVehicleDetail(ctx context.Context, vehicleID uuid.UUID) (*VehicleDetailRow, error)
	ListVehicleSummaries(ctx context.Context, driverID uuid.UUID) ([]assistant.VehicleSummary, error)
	GetMaintenanceRecords(ctx context.Context, vehicleID uuid.UUID) ([]assistant.MaintenanceRecord, error)
	GetVehicleIssues(ctx context.Context, vehicleID uuid.UUID) ([]assistant.VehicleIssue, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
