package fleet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vorexhq/fleet-assistant/internal/assistant"
)

// DriverRow is the driver profile joined with the user account.
type DriverRow struct {
	ID              uuid.UUID
	Name            string
	VehicleID       *uuid.UUID
	LicenseNumber   string
	LicenseType     string
	LicenseExpiry   *time.Time
	Rating          float64
	TotalDeliveries int
	Availability    string
}

// VehicleDetailRow is a vehicle with its embedded insurance columns.
type VehicleDetailRow struct {
	ID                uuid.UUID
	Make              string
	Model             string
	Year              int
	PlateNumber       string
	Type              string
	Capacity          float64
	MaxWeight         float64
	Status            string
	Odometer          int
	LastMaintenance   *time.Time
	NextMaintenance   *time.Time
	InsuranceProvider *string
	InsurancePolicy   *string
	InsuranceCoverage *string
	InsuranceEndDate  *time.Time
}

// Repository handles fleet data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new fleet repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetDriver retrieves a driver profile with the assigned vehicle reference
func (r *Repository) GetDriver(ctx context.Context, driverID uuid.UUID) (*DriverRow, error) {
	d := &DriverRow{}
	err := r.db.QueryRow(ctx, `
		SELECT d.id, u.full_name, d.vehicle_id,
			d.license_number, d.license_type, d.license_expiry,
			d.rating, d.total_deliveries, d.availability
		FROM drivers d
		JOIN users u ON d.user_id = u.id
		WHERE d.id = $1`, driverID,
	).Scan(
		&d.ID, &d.Name, &d.VehicleID,
		&d.LicenseNumber, &d.LicenseType, &d.LicenseExpiry,
		&d.Rating, &d.TotalDeliveries, &d.Availability,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetVehicleDetail retrieves a vehicle with its insurance columns
func (r *Repository) GetVehicleDetail(ctx context.Context, vehicleID uuid.UUID) (*VehicleDetailRow, error) {
	v := &VehicleDetailRow{}
	err := r.db.QueryRow(ctx, `
		SELECT id, make, model, year, plate_number, type,
			capacity, max_weight, current_status, odometer,
			last_maintenance, next_maintenance,
			insurance_provider, insurance_policy_number,
			insurance_coverage, insurance_end_date
		FROM vehicles WHERE id = $1`, vehicleID,
	).Scan(
		&v.ID, &v.Make, &v.Model, &v.Year, &v.PlateNumber, &v.Type,
		&v.Capacity, &v.MaxWeight, &v.Status, &v.Odometer,
		&v.LastMaintenance, &v.NextMaintenance,
		&v.InsuranceProvider, &v.InsurancePolicy,
		&v.InsuranceCoverage, &v.InsuranceEndDate,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListVehicleSummaries returns the flat vehicle list for a driver
func (r *Repository) ListVehicleSummaries(ctx context.Context, driverID uuid.UUID) ([]assistant.VehicleSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT make, model, year, plate_number,
			registration_expiry, insurance_end_date, current_status
		FROM vehicles
		WHERE driver_id = $1
		ORDER BY created_at DESC`, driverID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []assistant.VehicleSummary
	for rows.Next() {
		var (
			v          assistant.VehicleSummary
			regExpiry  *time.Time
			insExpiry  *time.Time
		)
		if err := rows.Scan(
			&v.Make, &v.Model, &v.Year, &v.LicensePlate,
			&regExpiry, &insExpiry, &v.Status,
		); err != nil {
			return nil, err
		}
		v.RegistrationExpiry = formatDate(regExpiry)
		v.InsuranceExpiry = formatDate(insExpiry)
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

// GetMaintenanceRecords returns maintenance history for a vehicle, newest first
func (r *Repository) GetMaintenanceRecords(ctx context.Context, vehicleID uuid.UUID) ([]assistant.MaintenanceRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT type, description, date, cost, odometer, status
		FROM maintenance_records
		WHERE vehicle_id = $1
		ORDER BY date DESC`, vehicleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []assistant.MaintenanceRecord
	for rows.Next() {
		var (
			m    assistant.MaintenanceRecord
			date *time.Time
		)
		if err := rows.Scan(&m.Type, &m.Description, &date, &m.Cost, &m.Odometer, &m.Status); err != nil {
			return nil, err
		}
		m.Date = formatDate(date)
		records = append(records, m)
	}

	return records, rows.Err()
}

// GetVehicleIssues returns reported issues for a vehicle, newest first
func (r *Repository) GetVehicleIssues(ctx context.Context, vehicleID uuid.UUID) ([]assistant.VehicleIssue, error) {
	rows, err := r.db.Query(ctx, `
		SELECT title, description, reported_at, status, priority
		FROM vehicle_issues
		WHERE vehicle_id = $1
		ORDER BY reported_at DESC`, vehicleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []assistant.VehicleIssue
	for rows.Next() {
		var (
			issue      assistant.VehicleIssue
			reportedAt *time.Time
		)
		if err := rows.Scan(&issue.Title, &issue.Description, &reportedAt, &issue.Status, &issue.Priority); err != nil {
			return nil, err
		}
		issue.ReportedAt = formatDate(reportedAt)
		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

// formatDate renders a nullable timestamp as YYYY-MM-DD, or empty when absent
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
