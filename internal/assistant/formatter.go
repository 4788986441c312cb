package assistant

import (
	"errors"
	"fmt"
	"strings"
)

// Literal blocks the formatter is contractually required to emit.
const (
	noDataText      = "No vehicle data available."
	formatErrorText = "Error formatting vehicle data."
)

// ErrMalformedBundle reports a bundle whose shape tag does not match its
// contents. It never escapes FormatBundle; the generator matches on it to
// decide the fallback path.
var ErrMalformedBundle = errors.New("malformed data bundle")

// FormatBundle renders a bundle as the human-readable block included in
// remote prompts. It never fails: malformed input yields a literal error
// string instead.
func FormatBundle(bundle *DataBundle) string {
	text, err := formatBundle(bundle)
	if err != nil {
		return formatErrorText
	}
	return text
}

func formatBundle(bundle *DataBundle) (string, error) {
	if bundle == nil {
		return noDataText, nil
	}

	// The shape tag is checked before the empty check so an unrecognized
	// tag is always malformed, whatever the payload carries.
	switch bundle.Shape {
	case ShapeFleet:
		if len(bundle.Fleet) == 0 {
			return noDataText, nil
		}
		return formatFleet(bundle.Fleet), nil
	case ShapeDetail:
		if bundle.Detail == nil {
			return noDataText, nil
		}
		return formatDetail(bundle.Detail), nil
	default:
		return "", fmt.Errorf("%w: unknown shape %q", ErrMalformedBundle, bundle.Shape)
	}
}

func formatFleet(vehicles []VehicleSummary) string {
	blocks := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		block := strings.Join([]string{
			fmt.Sprintf("Vehicle: %s %s %s", yearOrNA(v.Year), orNA(v.Make), orNA(v.Model)),
			fmt.Sprintf("License Plate: %s", orNA(v.LicensePlate)),
			fmt.Sprintf("Registration Expires: %s", dateOrNA(v.RegistrationExpiry)),
			fmt.Sprintf("Insurance Expires: %s", dateOrNA(v.InsuranceExpiry)),
			fmt.Sprintf("Status: %s", orNA(v.Status)),
		}, "\n")
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n")
}

func formatDetail(detail *VehicleDetail) string {
	var b strings.Builder

	v := detail.Vehicle
	b.WriteString(fmt.Sprintf("Vehicle: %s %s %s\n", yearOrNA(v.Year), orNA(v.Make), orNA(v.Model)))
	b.WriteString(fmt.Sprintf("License Plate: %s\n", orNA(v.LicensePlate)))
	if v.Type != "" {
		b.WriteString(fmt.Sprintf("Type: %s\n", v.Type))
	}
	b.WriteString(fmt.Sprintf("Status: %s\n", orNA(v.Status)))
	if v.Odometer > 0 {
		b.WriteString(fmt.Sprintf("Odometer: %d km\n", v.Odometer))
	}
	b.WriteString(fmt.Sprintf("Last Maintenance: %s\n", dateOrNA(v.LastMaintenanceDate)))
	b.WriteString(fmt.Sprintf("Next Maintenance: %s\n", dateOrNA(v.NextMaintenanceDate)))

	b.WriteString("\nInsurance:\n")
	if ins := detail.Insurance; ins != nil {
		b.WriteString(fmt.Sprintf("Provider: %s\n", orNA(ins.Provider)))
		b.WriteString(fmt.Sprintf("Policy Number: %s\n", orNA(ins.PolicyNumber)))
		b.WriteString(fmt.Sprintf("Coverage: %s\n", orNA(ins.Coverage)))
		b.WriteString(fmt.Sprintf("Expires: %s\n", dateOrNA(ins.EndDate)))
	} else {
		b.WriteString("N/A\n")
	}

	b.WriteString("\nMaintenance Records:\n")
	if len(detail.Maintenance) == 0 {
		b.WriteString("None\n")
	}
	for _, m := range detail.Maintenance {
		b.WriteString(fmt.Sprintf("- %s (%s): %s ($%.2f)\n", orNA(m.Type), dateOrNA(m.Date), orNA(m.Description), m.Cost))
	}

	b.WriteString("\nCurrent Issues:\n")
	open := currentIssues(detail.Issues)
	if len(open) == 0 {
		b.WriteString("None\n")
	}
	for _, issue := range open {
		b.WriteString(fmt.Sprintf("- %s (%s): %s\n", orNA(issue.Title), orNA(issue.Status), orNA(issue.Description)))
	}

	b.WriteString("\nDriver:\n")
	if d := detail.Driver; d != nil {
		b.WriteString(fmt.Sprintf("Name: %s\n", orNA(d.Name)))
		b.WriteString(fmt.Sprintf("License: %s (Type %s), expires %s\n", orNA(d.LicenseNumber), orNA(d.LicenseType), dateOrNA(d.LicenseExpiry)))
		b.WriteString(fmt.Sprintf("Rating: %.1f (%d deliveries)\n", d.Rating, d.TotalDeliveries))
		b.WriteString(fmt.Sprintf("Availability: %s\n", orNA(d.Availability)))
	} else {
		b.WriteString("N/A\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// currentIssues filters out resolved entries, preserving order.
func currentIssues(issues []VehicleIssue) []VehicleIssue {
	open := make([]VehicleIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.Status == IssueStatusResolved {
			continue
		}
		open = append(open, issue)
	}
	return open
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yearOrNA(year int) string {
	if year <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", year)
}

// dateOrNA truncates a date-like string to its YYYY-MM-DD prefix, passes
// other non-empty strings through unchanged and renders "N/A" when missing.
func dateOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	if len(s) >= 10 && isDatePrefix(s[:10]) {
		return s[:10]
	}
	return s
}

func isDatePrefix(s string) bool {
	// YYYY-MM-DD
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
