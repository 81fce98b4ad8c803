// Package handler implements the HTTP endpoints of the print bridge.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localprint/bridge/internal/application/printing"
	"github.com/localprint/bridge/internal/interfaces/http/dto"
	"github.com/localprint/bridge/internal/interfaces/http/middleware"
)

// PrintHandler handles the print API endpoints.
type PrintHandler struct {
	BaseHandler
	printService *printing.PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService *printing.PrintService) *PrintHandler {
	return &PrintHandler{printService: printService}
}

// Print runs one print job start to finish and answers once the job has
// been handed to the spooler. The response says "printed"; what it means
// is "accepted by the print system", the closest the bridge can observe.
func (h *PrintHandler) Print(c *gin.Context) {
	var req dto.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	result, err := h.printService.Print(c.Request.Context(), req.ToParams())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPrintedResponse(result.JobID))
}

// Printers lists the print queue names known to the host.
func (h *PrintHandler) Printers(c *gin.Context) {
	names, err := h.printService.Printers(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPrintersResponse(names))
}
