package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localprint/bridge/internal/domain/shared"
	"github.com/localprint/bridge/internal/interfaces/http/dto"
)

// RegisterRoutes attaches the bridge API to the engine. The surface is
// three routes; everything else is a flat 404.
func RegisterRoutes(engine *gin.Engine, printHandler *PrintHandler, systemHandler *SystemHandler) {
	engine.GET("/health", systemHandler.Health)
	engine.GET("/printers", printHandler.Printers)
	engine.POST("/print", printHandler.Print)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(shared.ErrNotFound.Message))
	})
}
