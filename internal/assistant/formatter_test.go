package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBundleNoData(t *testing.T) {
	tests := []struct {
		name   string
		bundle *DataBundle
	}{
		{name: "nil bundle", bundle: nil},
		{name: "empty fleet", bundle: NewFleetBundle(nil)},
		{name: "detail without payload", bundle: &DataBundle{Shape: ShapeDetail}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "No vehicle data available.", FormatBundle(tt.bundle))
		})
	}
}

func TestFormatBundleUnknownShape(t *testing.T) {
	tests := []struct {
		name   string
		bundle *DataBundle
	}{
		{
			name: "unknown tag with payload",
			bundle: &DataBundle{
				Shape: BundleShape("graph"),
				Fleet: []VehicleSummary{{Make: "Ford"}},
			},
		},
		{
			name:   "unknown tag without payload",
			bundle: &DataBundle{Shape: BundleShape("graph")},
		},
		{
			name:   "missing tag",
			bundle: &DataBundle{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The shape tag does not match either variant, so the bundle is
			// malformed no matter what the payload carries.
			assert.Equal(t, "Error formatting vehicle data.", FormatBundle(tt.bundle))
		})
	}
}

func TestFormatFleet(t *testing.T) {
	bundle := NewFleetBundle([]VehicleSummary{
		{
			Make:               "Toyota",
			Model:              "Hilux",
			Year:               2022,
			LicensePlate:       "AB-1234",
			RegistrationExpiry: "2025-11-30T00:00:00.000Z",
			InsuranceExpiry:    "2025-12-01",
			Status:             "ACTIVE",
		},
		{Make: "Ford"},
	})

	got := FormatBundle(bundle)

	assert.Contains(t, got, "Vehicle: 2022 Toyota Hilux")
	assert.Contains(t, got, "License Plate: AB-1234")
	// Timestamps collapse to their date prefix
	assert.Contains(t, got, "Registration Expires: 2025-11-30")
	assert.NotContains(t, got, "00:00:00")
	assert.Contains(t, got, "Insurance Expires: 2025-12-01")
	assert.Contains(t, got, "Status: ACTIVE")

	// Missing fields render as N/A instead of vanishing
	assert.Contains(t, got, "Vehicle: N/A Ford N/A")
	assert.Contains(t, got, "Registration Expires: N/A")
}

func TestFormatDetail(t *testing.T) {
	bundle := NewDetailBundle(&VehicleDetail{
		Vehicle: VehicleRecord{
			Make:                "Mercedes",
			Model:               "Sprinter",
			Year:                2021,
			LicensePlate:        "XY-9876",
			Status:              "IN_USE",
			Odometer:            84000,
			LastMaintenanceDate: "2025-06-15",
			NextMaintenanceDate: "2025-12-15",
		},
		Insurance: &InsuranceInfo{
			Provider:     "Acme",
			PolicyNumber: "P1",
			Coverage:     "comprehensive",
			EndDate:      "2025-12-01T10:30:00Z",
		},
		Maintenance: []MaintenanceRecord{
			{Type: "Oil Change", Description: "Full synthetic", Date: "2025-06-15", Cost: 120.5},
		},
		Issues: []VehicleIssue{
			{Title: "Brake noise", Description: "Squeal at low speed", Status: "OPEN", Priority: "HIGH"},
			{Title: "Wiper", Description: "Replaced", Status: "RESOLVED", Priority: "LOW"},
		},
		Driver: &DriverRecord{
			Name:            "Jamal",
			LicenseNumber:   "D-100",
			LicenseType:     "C",
			LicenseExpiry:   "2027-01-01",
			Rating:          4.8,
			TotalDeliveries: 312,
			Availability:    "AVAILABLE",
		},
	})

	got := FormatBundle(bundle)

	assert.Contains(t, got, "Vehicle: 2021 Mercedes Sprinter")
	assert.Contains(t, got, "Odometer: 84000 km")
	assert.Contains(t, got, "Provider: Acme")
	assert.Contains(t, got, "Policy Number: P1")
	assert.Contains(t, got, "Expires: 2025-12-01")
	assert.Contains(t, got, "- Oil Change (2025-06-15): Full synthetic ($120.50)")
	assert.Contains(t, got, "- Brake noise (OPEN): Squeal at low speed")
	// Resolved issues never appear in the current issues section
	assert.NotContains(t, got, "Wiper")
	assert.Contains(t, got, "Name: Jamal")
	assert.Contains(t, got, "Rating: 4.8 (312 deliveries)")
}

func TestFormatDetailMissingSections(t *testing.T) {
	bundle := NewDetailBundle(&VehicleDetail{
		Vehicle: VehicleRecord{Make: "Iveco", Model: "Daily", Year: 2019, LicensePlate: "QQ-1", Status: "ACTIVE"},
	})

	got := FormatBundle(bundle)

	assert.Contains(t, got, "Insurance:\nN/A")
	assert.Contains(t, got, "Maintenance Records:\nNone")
	assert.Contains(t, got, "Current Issues:\nNone")
	assert.Contains(t, got, "Driver:\nN/A")
}

func TestDateOrNA(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "N/A"},
		{name: "plain date", input: "2025-12-01", want: "2025-12-01"},
		{name: "iso timestamp", input: "2025-12-01T00:00:00.000Z", want: "2025-12-01"},
		{name: "non-date text passes through", input: "next Tuesday", want: "next Tuesday"},
		{name: "long non-date text passes through", input: "sometime in 2025, maybe", want: "sometime in 2025, maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dateOrNA(tt.input))
		})
	}
}

func TestFormatFleetBlockLayout(t *testing.T) {
	bundle := NewFleetBundle([]VehicleSummary{
		{Make: "A", Model: "One", Year: 2020, LicensePlate: "P1", Status: "ACTIVE"},
		{Make: "B", Model: "Two", Year: 2021, LicensePlate: "P2", Status: "IDLE"},
	})

	got := FormatBundle(bundle)

	// One five-line block per vehicle
	assert.Equal(t, 10, len(strings.Split(got, "\n")))
}
