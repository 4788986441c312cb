package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vorexhq/fleet-assistant/internal/assistant"
	"github.com/vorexhq/fleet-assistant/pkg/common"
)

// ============================================================================
// Mock Repository
// ============================================================================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverRow, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DriverRow), args.Error(1)
}

func (m *MockRepository) GetVehicleDetail(ctx context.Context, vehicleID uuid.UUID) (*VehicleDetailRow, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VehicleDetailRow), args.Error(1)
}

func (m *MockRepository) ListVehicleSummaries(ctx context.Context, driverID uuid.UUID) ([]assistant.VehicleSummary, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]assistant.VehicleSummary), args.Error(1)
}

func (m *MockRepository) GetMaintenanceRecords(ctx context.Context, vehicleID uuid.UUID) ([]assistant.MaintenanceRecord, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]assistant.MaintenanceRecord), args.Error(1)
}

func (m *MockRepository) GetVehicleIssues(ctx context.Context, vehicleID uuid.UUID) ([]assistant.VehicleIssue, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]assistant.VehicleIssue), args.Error(1)
}

// ============================================================================
// Helpers
// ============================================================================

func createTestDriver(vehicleID *uuid.UUID) *DriverRow {
	expiry := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &DriverRow{
		ID:              uuid.New(),
		Name:            "Jamal",
		VehicleID:       vehicleID,
		LicenseNumber:   "D-100",
		LicenseType:     "C",
		LicenseExpiry:   &expiry,
		Rating:          4.8,
		TotalDeliveries: 312,
		Availability:    "AVAILABLE",
	}
}

func createTestVehicleDetail(id uuid.UUID) *VehicleDetailRow {
	provider := "Acme"
	policy := "P1"
	coverage := "comprehensive"
	insEnd := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	lastMaint := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &VehicleDetailRow{
		ID:                id,
		Make:              "Mercedes",
		Model:             "Sprinter",
		Year:              2021,
		PlateNumber:       "XY-9876",
		Type:              "VAN",
		Capacity:          12.5,
		MaxWeight:         3500,
		Status:            "IN_USE",
		Odometer:          84000,
		LastMaintenance:   &lastMaint,
		InsuranceProvider: &provider,
		InsurancePolicy:   &policy,
		InsuranceCoverage: &coverage,
		InsuranceEndDate:  &insEnd,
	}
}

// ============================================================================
// VehicleBundle Tests
// ============================================================================

func TestVehicleBundleInvalidID(t *testing.T) {
	service := NewService(new(MockRepository))

	_, err := service.VehicleBundle(context.Background(), "not-a-uuid")

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestVehicleBundleDriverNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetDriver", ctx, id).Return(nil, pgx.ErrNoRows)

	_, err := service.VehicleBundle(ctx, id.String())

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
	mockRepo.AssertExpectations(t)
}

func TestVehicleBundleFleetShape(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()
	driver := createTestDriver(nil)

	summaries := []assistant.VehicleSummary{
		{Make: "Toyota", Model: "Hilux", Year: 2022, LicensePlate: "AB-1234", Status: "ACTIVE"},
	}

	mockRepo.On("GetDriver", ctx, driver.ID).Return(driver, nil)
	mockRepo.On("ListVehicleSummaries", ctx, driver.ID).Return(summaries, nil)

	bundle, err := service.VehicleBundle(ctx, driver.ID.String())

	require.NoError(t, err)
	assert.Equal(t, assistant.ShapeFleet, bundle.Shape)
	assert.Equal(t, summaries, bundle.Fleet)
	assert.Nil(t, bundle.Detail)
	mockRepo.AssertExpectations(t)
}

func TestVehicleBundleFleetShapeEmpty(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()
	driver := createTestDriver(nil)

	mockRepo.On("GetDriver", ctx, driver.ID).Return(driver, nil)
	mockRepo.On("ListVehicleSummaries", ctx, driver.ID).Return([]assistant.VehicleSummary{}, nil)

	bundle, err := service.VehicleBundle(ctx, driver.ID.String())

	require.NoError(t, err)
	assert.True(t, bundle.IsEmpty())
}

func TestVehicleBundleDetailShape(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()

	vehicleID := uuid.New()
	driver := createTestDriver(&vehicleID)
	vehicle := createTestVehicleDetail(vehicleID)

	records := []assistant.MaintenanceRecord{{Type: "Oil Change", Date: "2025-06-15", Cost: 120.5}}
	issues := []assistant.VehicleIssue{{Title: "Brake noise", Status: "OPEN", Priority: "HIGH"}}

	mockRepo.On("GetDriver", ctx, driver.ID).Return(driver, nil)
	mockRepo.On("GetVehicleDetail", ctx, vehicleID).Return(vehicle, nil)
	mockRepo.On("GetMaintenanceRecords", ctx, vehicleID).Return(records, nil)
	mockRepo.On("GetVehicleIssues", ctx, vehicleID).Return(issues, nil)

	bundle, err := service.VehicleBundle(ctx, driver.ID.String())

	require.NoError(t, err)
	require.Equal(t, assistant.ShapeDetail, bundle.Shape)
	require.NotNil(t, bundle.Detail)

	assert.Equal(t, "Mercedes", bundle.Detail.Vehicle.Make)
	assert.Equal(t, "XY-9876", bundle.Detail.Vehicle.LicensePlate)
	assert.Equal(t, "2025-06-15", bundle.Detail.Vehicle.LastMaintenanceDate)
	assert.Equal(t, "", bundle.Detail.Vehicle.NextMaintenanceDate)

	require.NotNil(t, bundle.Detail.Insurance)
	assert.Equal(t, "Acme", bundle.Detail.Insurance.Provider)
	assert.Equal(t, "P1", bundle.Detail.Insurance.PolicyNumber)
	assert.Equal(t, "2025-12-01", bundle.Detail.Insurance.EndDate)

	assert.Equal(t, records, bundle.Detail.Maintenance)
	assert.Equal(t, issues, bundle.Detail.Issues)

	require.NotNil(t, bundle.Detail.Driver)
	assert.Equal(t, "Jamal", bundle.Detail.Driver.Name)
	assert.Equal(t, "2027-01-01", bundle.Detail.Driver.LicenseExpiry)
	mockRepo.AssertExpectations(t)
}

func TestVehicleBundleDetailWithoutInsurance(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()

	vehicleID := uuid.New()
	driver := createTestDriver(&vehicleID)
	vehicle := createTestVehicleDetail(vehicleID)
	vehicle.InsuranceProvider = nil

	mockRepo.On("GetDriver", ctx, driver.ID).Return(driver, nil)
	mockRepo.On("GetVehicleDetail", ctx, vehicleID).Return(vehicle, nil)
	mockRepo.On("GetMaintenanceRecords", ctx, vehicleID).Return([]assistant.MaintenanceRecord{}, nil)
	mockRepo.On("GetVehicleIssues", ctx, vehicleID).Return([]assistant.VehicleIssue{}, nil)

	bundle, err := service.VehicleBundle(ctx, driver.ID.String())

	require.NoError(t, err)
	assert.Nil(t, bundle.Detail.Insurance)
}

func TestVehicleBundleDetailToleratesSecondaryFailures(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()

	vehicleID := uuid.New()
	driver := createTestDriver(&vehicleID)
	vehicle := createTestVehicleDetail(vehicleID)

	mockRepo.On("GetDriver", ctx, driver.ID).Return(driver, nil)
	mockRepo.On("GetVehicleDetail", ctx, vehicleID).Return(vehicle, nil)
	mockRepo.On("GetMaintenanceRecords", ctx, vehicleID).Return(nil, errors.New("db error"))
	mockRepo.On("GetVehicleIssues", ctx, vehicleID).Return(nil, errors.New("db error"))

	bundle, err := service.VehicleBundle(ctx, driver.ID.String())

	require.NoError(t, err)
	assert.Empty(t, bundle.Detail.Maintenance)
	assert.Empty(t, bundle.Detail.Issues)
}

func TestVehicleBundleVehicleNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()

	vehicleID := uuid.New()
	driver := createTestDriver(&vehicleID)

	mockRepo.On("GetDriver", ctx, driver.ID).Return(driver, nil)
	mockRepo.On("GetVehicleDetail", ctx, vehicleID).Return(nil, pgx.ErrNoRows)

	_, err := service.VehicleBundle(ctx, driver.ID.String())

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

// ============================================================================
// VehicleIssues Tests
// ============================================================================

func TestVehicleIssues(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()
	id := uuid.New()

	issues := []assistant.VehicleIssue{{Title: "Brake noise", Status: "OPEN"}}
	mockRepo.On("GetVehicleIssues", ctx, id).Return(issues, nil)

	got, err := service.VehicleIssues(ctx, id.String())

	require.NoError(t, err)
	assert.Equal(t, issues, got)
}

func TestVehicleIssuesInvalidID(t *testing.T) {
	service := NewService(new(MockRepository))

	_, err := service.VehicleIssues(context.Background(), "nope")

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestVehicleIssuesRepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetVehicleIssues", ctx, id).Return(nil, errors.New("db error"))

	_, err := service.VehicleIssues(ctx, id.String())

	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Code)
}
