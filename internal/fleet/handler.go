package fleet

import (
	"github.com/gin-gonic/gin"
	"github.com/vorexhq/fleet-assistant/pkg/common"
)

// Handler handles HTTP requests for fleet data
type Handler struct {
	service *Service
}

// NewHandler creates a new fleet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetVehicleData returns the driver's vehicle data bundle
// GET /api/vehicle-data/:driverID
func (h *Handler) GetVehicleData(c *gin.Context) {
	driverID, ok := common.ParseUUIDParam(c, "driverID", "driver ID")
	if !ok {
		return
	}

	bundle, err := h.service.VehicleBundle(c.Request.Context(), driverID.String())
	if common.HandleServiceError(c, err, "failed to get vehicle data") {
		return
	}

	common.SuccessResponse(c, bundle)
}

// GetVehicleIssues returns reported issues for a vehicle, newest first
// GET /api/vehicle-issues/:vehicleID
func (h *Handler) GetVehicleIssues(c *gin.Context) {
	vehicleID, ok := common.ParseUUIDParam(c, "vehicleID", "vehicle ID")
	if !ok {
		return
	}

	issues, err := h.service.VehicleIssues(c.Request.Context(), vehicleID.String())
	if common.HandleServiceError(c, err, "failed to get vehicle issues") {
		return
	}

	common.SuccessResponse(c, issues)
}
