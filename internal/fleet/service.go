package fleet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vorexhq/fleet-assistant/internal/assistant"
	"github.com/vorexhq/fleet-assistant/pkg/common"
	"github.com/vorexhq/fleet-assistant/pkg/logger"
	"go.uber.org/zap"
)

// Service assembles driver vehicle data into assistant bundles
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new fleet service
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Ensure Service satisfies the assistant's data provider contract
var _ assistant.FleetProvider = (*Service)(nil)

// VehicleBundle returns the driver's vehicle data. Drivers with an assigned
// vehicle get the detail form with insurance, maintenance history, open
// issues and their own profile. Drivers without one get the flat list of
// vehicles registered to them.
func (s *Service) VehicleBundle(ctx context.Context, driverID string) (*assistant.DataBundle, error) {
	id, err := uuid.Parse(driverID)
	if err != nil {
		return nil, common.NewBadRequestError("invalid driver ID", err)
	}

	driver, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("driver not found", err)
		}
		return nil, common.NewInternalError("failed to get driver", err)
	}

	if driver.VehicleID == nil {
		vehicles, err := s.repo.ListVehicleSummaries(ctx, id)
		if err != nil {
			return nil, common.NewInternalError("failed to list vehicles", err)
		}
		return assistant.NewFleetBundle(vehicles), nil
	}

	return s.detailBundle(ctx, driver)
}

// detailBundle assembles the assigned vehicle's full picture. Maintenance
// and issue lookups are best effort; their absence does not fail the bundle.
func (s *Service) detailBundle(ctx context.Context, driver *DriverRow) (*assistant.DataBundle, error) {
	vehicleID := *driver.VehicleID

	row, err := s.repo.GetVehicleDetail(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("vehicle not found", err)
		}
		return nil, common.NewInternalError("failed to get vehicle", err)
	}

	detail := &assistant.VehicleDetail{
		Vehicle: assistant.VehicleRecord{
			Make:                row.Make,
			Model:               row.Model,
			Year:                row.Year,
			LicensePlate:        row.PlateNumber,
			Type:                row.Type,
			Capacity:            row.Capacity,
			MaxWeight:           row.MaxWeight,
			Status:              row.Status,
			Odometer:            row.Odometer,
			LastMaintenanceDate: formatDate(row.LastMaintenance),
			NextMaintenanceDate: formatDate(row.NextMaintenance),
		},
		Driver: &assistant.DriverRecord{
			Name:            driver.Name,
			LicenseNumber:   driver.LicenseNumber,
			LicenseType:     driver.LicenseType,
			LicenseExpiry:   formatDate(driver.LicenseExpiry),
			Rating:          driver.Rating,
			TotalDeliveries: driver.TotalDeliveries,
			Availability:    driver.Availability,
		},
	}

	if row.InsuranceProvider != nil {
		detail.Insurance = &assistant.InsuranceInfo{
			Provider:     *row.InsuranceProvider,
			PolicyNumber: derefString(row.InsurancePolicy),
			Coverage:     derefString(row.InsuranceCoverage),
			EndDate:      formatDate(row.InsuranceEndDate),
		}
	}

	if records, err := s.repo.GetMaintenanceRecords(ctx, vehicleID); err != nil {
		logger.WarnContext(ctx, "failed to load maintenance records",
			zap.String("vehicle_id", vehicleID.String()),
			zap.Error(err),
		)
	} else {
		detail.Maintenance = records
	}

	if issues, err := s.repo.GetVehicleIssues(ctx, vehicleID); err != nil {
		logger.WarnContext(ctx, "failed to load vehicle issues",
			zap.String("vehicle_id", vehicleID.String()),
			zap.Error(err),
		)
	} else {
		detail.Issues = issues
	}

	return assistant.NewDetailBundle(detail), nil
}

// VehicleIssues returns the reported issues for a vehicle, newest first.
func (s *Service) VehicleIssues(ctx context.Context, vehicleID string) ([]assistant.VehicleIssue, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, common.NewBadRequestError("invalid vehicle ID", err)
	}

	issues, err := s.repo.GetVehicleIssues(ctx, id)
	if err != nil {
		return nil, common.NewInternalError("failed to get vehicle issues", err)
	}
	return issues, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
