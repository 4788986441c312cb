package assistant

// BundleShape discriminates the two accepted DataBundle variants.
type BundleShape string

const (
	// ShapeFleet is the flat list form: zero or more vehicle summaries,
	// no driver and no nested maintenance or issues.
	ShapeFleet BundleShape = "fleet"
	// ShapeDetail is the detail form: one vehicle with insurance,
	// maintenance history, issues and the assigned driver.
	ShapeDetail BundleShape = "detail"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// IssueStatusResolved marks issues excluded from "current issues" views.
const IssueStatusResolved = "RESOLVED"

// VehicleSummary is a Shape A entry. Any field may be empty.
type VehicleSummary struct {
	Make               string `json:"make,omitempty"`
	Model              string `json:"model,omitempty"`
	Year               int    `json:"year,omitempty"`
	LicensePlate       string `json:"licensePlate,omitempty"`
	RegistrationExpiry string `json:"registrationExpiry,omitempty"`
	InsuranceExpiry    string `json:"insuranceExpiry,omitempty"`
	Status             string `json:"status,omitempty"`
}

// VehicleRecord describes a single vehicle in the detail form.
type VehicleRecord struct {
	Make                string  `json:"make"`
	Model               string  `json:"model"`
	Year                int     `json:"year"`
	LicensePlate        string  `json:"licensePlate"`
	Type                string  `json:"type,omitempty"`
	Capacity            float64 `json:"capacity,omitempty"`
	MaxWeight           float64 `json:"maxWeight,omitempty"`
	Status              string  `json:"status"`
	Odometer            int     `json:"odometer,omitempty"`
	LastMaintenanceDate string  `json:"lastMaintenanceDate,omitempty"`
	NextMaintenanceDate string  `json:"nextMaintenanceDate,omitempty"`
}

// InsuranceInfo is embedded in a vehicle detail.
type InsuranceInfo struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policyNumber"`
	Coverage     string `json:"coverage"`
	EndDate      string `json:"endDate"`
}

// MaintenanceRecord is one service event, newest-first when listed.
type MaintenanceRecord struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Cost        float64 `json:"cost"`
	Odometer    int     `json:"odometer,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// VehicleIssue is a reported problem. Status is an open set of strings;
// IssueStatusResolved is the only value with defined semantics.
type VehicleIssue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ReportedAt  string `json:"reportedAt"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// DriverRecord describes the driver assigned to a vehicle.
type DriverRecord struct {
	Name            string  `json:"name"`
	LicenseNumber   string  `json:"licenseNumber"`
	LicenseType     string  `json:"licenseType"`
	LicenseExpiry   string  `json:"licenseExpiry"`
	Rating          float64 `json:"rating"`
	TotalDeliveries int     `json:"totalDeliveries"`
	Availability    string  `json:"availability"`
}

// VehicleDetail is the Shape B payload.
type VehicleDetail struct {
	Vehicle     VehicleRecord       `json:"vehicle"`
	Insurance   *InsuranceInfo      `json:"insurance,omitempty"`
	Maintenance []MaintenanceRecord `json:"maintenanceRecords,omitempty"`
	Issues      []VehicleIssue      `json:"issues,omitempty"`
	Driver      *DriverRecord       `json:"driver,omitempty"`
}

// DataBundle is the tagged union passed into formatting and generation.
// Exactly one of Fleet or Detail is meaningful, selected by Shape.
// A nil bundle is valid everywhere and means "no data".
type DataBundle struct {
	Shape  BundleShape     `json:"shape"`
	Fleet  []VehicleSummary `json:"vehicles,omitempty"`
	Detail *VehicleDetail   `json:"detail,omitempty"`
}

// NewFleetBundle wraps vehicle summaries in a Shape A bundle.
func NewFleetBundle(vehicles []VehicleSummary) *DataBundle {
	return &DataBundle{Shape: ShapeFleet, Fleet: vehicles}
}

// NewDetailBundle wraps a vehicle detail in a Shape B bundle.
func NewDetailBundle(detail *VehicleDetail) *DataBundle {
	return &DataBundle{Shape: ShapeDetail, Detail: detail}
}

// IsEmpty reports whether the bundle carries no vehicle data at all.
func (b *DataBundle) IsEmpty() bool {
	if b == nil {
		return true
	}
	switch b.Shape {
	case ShapeFleet:
		return len(b.Fleet) == 0
	case ShapeDetail:
		return b.Detail == nil
	default:
		return true
	}
}

// ConversationTurn is one entry in a session's history.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/assistant/chat.
type ChatRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// ChatResponse carries the generated answer.
type ChatResponse struct {
	Response string `json:"response"`
}
