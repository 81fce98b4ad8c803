package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localprint/bridge/internal/interfaces/http/dto"
)

// SystemHandler handles liveness endpoints.
type SystemHandler struct {
	BaseHandler
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// Health reports that the bridge is up. The local-origin gate runs before
// routing, so even liveness is invisible off-machine.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse("alive"))
}
