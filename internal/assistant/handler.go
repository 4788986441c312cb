package assistant

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vorexhq/fleet-assistant/pkg/common"
)

// Handler handles HTTP requests for the assistant
type Handler struct {
	service *Service
}

// NewHandler creates a new assistant handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Chat answers a driver's question
// POST /api/assistant/chat
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "driver_id and message are required")
		return
	}

	response, err := h.service.Chat(c.Request.Context(), req.DriverID, req.Message)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to generate response")
		return
	}

	common.SuccessResponse(c, ChatResponse{Response: response})
}

// HealthCheck reports assistant status and operating mode
// GET /api/assistant/health-check
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "assistant",
		"using_mock": h.service.UsingMock(),
	})
}
