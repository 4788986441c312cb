package assistant

import (
	"fmt"
	"strings"
)

// MockRespond produces a canned answer from keyword rules. It is pure and
// deterministic: no I/O, no clock, no mutation of the bundle. It backs the
// service whenever no remote credential is configured, and is the silent
// fallback for every remote failure, so its behaviour is load-bearing.
//
// Keyword groups are tested in a fixed priority order; the first match wins.
func MockRespond(message string, bundle *DataBundle) string {
	if bundle.IsEmpty() {
		return "I'm your vehicle assistant. I can help with questions about registration, insurance, maintenance, and vehicle status once your vehicle is registered. What would you like to know?"
	}

	msg := strings.ToLower(message)
	name := primaryVehicleName(bundle)

	if strings.Contains(msg, "insurance") {
		return mockInsurance(bundle, name)
	}

	if strings.Contains(msg, "registration") && bundle.Shape == ShapeFleet {
		expiry := orNotSpecified(bundle.Fleet[0].RegistrationExpiry)
		return fmt.Sprintf("The registration for your %s expires on %s. Remember to renew it on time to avoid penalties.", name, expiry)
	}

	if strings.Contains(msg, "maintenance") || strings.Contains(msg, "service") {
		return mockMaintenance(bundle, name)
	}

	if (strings.Contains(msg, "issues") || strings.Contains(msg, "problems")) && bundle.Shape == ShapeDetail {
		return mockIssues(bundle.Detail, name)
	}

	if strings.Contains(msg, "status") {
		return mockStatus(bundle, name)
	}

	if strings.Contains(msg, "driver") && bundle.Shape == ShapeDetail && bundle.Detail.Driver != nil {
		return mockDriver(bundle.Detail.Driver)
	}

	return fmt.Sprintf("I'm your vehicle assistant for your %s. I can help with information about your vehicle's registration, insurance, maintenance schedule, and status. What would you like to know?", name)
}

func mockInsurance(bundle *DataBundle, name string) string {
	if bundle.Shape == ShapeDetail {
		ins := bundle.Detail.Insurance
		if ins == nil {
			return fmt.Sprintf("I don't have insurance details on file for your %s. Please check with your fleet manager.", name)
		}
		return fmt.Sprintf("Your %s is insured with %s under policy %s (%s coverage). The policy expires on %s. Make sure to renew it before the expiration date to maintain coverage.",
			name,
			orNotSpecified(ins.Provider),
			orNotSpecified(ins.PolicyNumber),
			orNotSpecified(ins.Coverage),
			orNotSpecified(ins.EndDate),
		)
	}

	expiry := orNotSpecified(bundle.Fleet[0].InsuranceExpiry)
	return fmt.Sprintf("Your insurance for the %s expires on %s. Make sure to renew it before the expiration date to maintain coverage.", name, expiry)
}

func mockMaintenance(bundle *DataBundle, name string) string {
	if bundle.Shape == ShapeFleet {
		return fmt.Sprintf("Based on standard maintenance schedules for a %s, you should have regular oil changes every 5,000-7,500 miles, rotate tires every 6,000-8,000 miles, and check brakes every 10,000-12,000 miles.", name)
	}

	v := bundle.Detail.Vehicle
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Your %s was last serviced on %s and the next service is due on %s.",
		name,
		orNotSpecified(v.LastMaintenanceDate),
		orNotSpecified(v.NextMaintenanceDate),
	))

	records := bundle.Detail.Maintenance
	if len(records) > 3 {
		records = records[:3]
	}
	if len(records) > 0 {
		b.WriteString(" Recent maintenance:")
		for _, m := range records {
			b.WriteString(fmt.Sprintf(" %s on %s.", orNotSpecified(m.Type), orNotSpecified(m.Date)))
		}
	}
	return b.String()
}

func mockIssues(detail *VehicleDetail, name string) string {
	open := currentIssues(detail.Issues)
	if len(open) == 0 {
		return fmt.Sprintf("There are no open issues reported for your %s.", name)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Your %s has %d open issue(s):", name, len(open)))
	for _, issue := range open {
		b.WriteString(fmt.Sprintf(" %s (%s priority): %s", orNotSpecified(issue.Title), orNotSpecified(issue.Priority), orNotSpecified(issue.Description)))
	}
	return b.String()
}

func mockStatus(bundle *DataBundle, name string) string {
	if bundle.Shape == ShapeDetail {
		v := bundle.Detail.Vehicle
		status := v.Status
		if status == "" {
			status = "in an unknown status"
		}
		if v.Odometer > 0 {
			return fmt.Sprintf("Your %s is currently %s with %d km on the odometer.", name, status, v.Odometer)
		}
		return fmt.Sprintf("Your %s is currently %s.", name, status)
	}

	status := bundle.Fleet[0].Status
	if status == "" {
		status = "in an unknown status"
	}
	return fmt.Sprintf("Your %s is currently %s.", name, status)
}

func mockDriver(d *DriverRecord) string {
	return fmt.Sprintf("The assigned driver is %s, license %s (Type %s), rated %.1f across %d deliveries. Availability: %s.",
		orNotSpecified(d.Name),
		orNotSpecified(d.LicenseNumber),
		orNotSpecified(d.LicenseType),
		d.Rating,
		d.TotalDeliveries,
		orNotSpecified(d.Availability),
	)
}

// primaryVehicleName renders "year make model" for the primary vehicle,
// skipping missing parts. Callers guarantee a non-empty bundle.
func primaryVehicleName(bundle *DataBundle) string {
	var year int
	var mk, model string

	switch bundle.Shape {
	case ShapeDetail:
		v := bundle.Detail.Vehicle
		year, mk, model = v.Year, v.Make, v.Model
	default:
		v := bundle.Fleet[0]
		year, mk, model = v.Year, v.Make, v.Model
	}

	parts := make([]string, 0, 3)
	if year > 0 {
		parts = append(parts, fmt.Sprintf("%d", year))
	}
	if mk != "" {
		parts = append(parts, mk)
	}
	if model != "" {
		parts = append(parts, model)
	}
	if len(parts) == 0 {
		return "vehicle"
	}
	return strings.Join(parts, " ")
}

func orNotSpecified(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}
