package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pof-predictor/internal/pof"
)

type Handlers struct {
	service pof.Service
}

func NewHandlers(service pof.Service) *Handlers {
	return &Handlers{service: service}
}

// Predict runs one point of failure prediction.
func (h *Handlers) Predict(ctx *gin.Context) {
	var json pof.Request
	if err := ctx.ShouldBindJSON(&json); err != nil {
		ctx.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	resp, err := h.service.Predict(ctx.Request.Context(), &json)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *Handlers) GetHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "OK"})
}
