package api

import (
	"net/http"

	"sharpq/app"
	"sharpq/domain/core"
	"sharpq/domain/stats"
	"sharpq/internal"
	"sharpq/internal/config"
	"sharpq/internal/errors"
	"sharpq/ports"

	"github.com/gin-gonic/gin"
)

// Handler serves the q-value correction API
type Handler struct {
	service *app.SharpenService
	reader  ports.LedgerReaderPort
	sharpen config.SharpenConfig
	logger  *internal.Logger
}

// NewHandler creates a new API handler
func NewHandler(service *app.SharpenService, reader ports.LedgerReaderPort, sharpen config.SharpenConfig, logger *internal.Logger) *Handler {
	return &Handler{
		service: service,
		reader:  reader,
		sharpen: sharpen,
		logger:  logger,
	}
}

// SharpenRequest is the payload for single-family correction
type SharpenRequest struct {
	PValues []float64 `json:"p_values" binding:"required"`
	Step    float64   `json:"step"`
	Method  string    `json:"method"`
}

// SharpenResponse carries corrected q-values aligned to the request order
type SharpenResponse struct {
	QValues  []float64 `json:"q_values"`
	Method   string    `json:"method"`
	Step     float64   `json:"step"`
	NumTests int       `json:"num_tests"`
}

// Sharpen corrects a single set of p-values
func (h *Handler) Sharpen(c *gin.Context) {
	var req SharpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if len(req.PValues) > h.sharpen.MaxBatch {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "too many p-values",
			"code":  errors.CodeInvalidInput,
			"limit": h.sharpen.MaxBatch,
		})
		return
	}

	step := req.Step
	if step == 0 {
		step = h.sharpen.DefaultStep
	}

	result, err := h.service.RunSweep(c.Request.Context(), app.SweepRequest{
		Families:    []stats.FamilyInput{{FamilyKey: "api/sharpen", PValues: req.PValues}},
		Step:        step,
		Method:      stats.FDRMethod(req.Method),
		MaxParallel: h.sharpen.MaxParallel,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	family := result.Families[0]
	c.JSON(http.StatusOK, SharpenResponse{
		QValues:  family.QValues,
		Method:   string(family.Method),
		Step:     family.Step,
		NumTests: family.NumTests,
	})
}

// SweepRequest is the payload for multi-family correction
type SweepRequest struct {
	Families []stats.FamilyInput `json:"families" binding:"required"`
	Step     float64             `json:"step"`
	Method   string              `json:"method"`
}

// Sweep corrects several independent families in one call
func (h *Handler) Sweep(c *gin.Context) {
	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	for _, family := range req.Families {
		if len(family.PValues) > h.sharpen.MaxBatch {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "too many p-values in family",
				"code":   errors.CodeInvalidInput,
				"family": family.FamilyKey,
				"limit":  h.sharpen.MaxBatch,
			})
			return
		}
	}

	result, err := h.service.RunSweep(c.Request.Context(), app.SweepRequest{
		Families:    req.Families,
		Step:        req.Step,
		Method:      stats.FDRMethod(req.Method),
		MaxParallel: h.sharpen.MaxParallel,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SweepArtifacts returns the audit artifacts recorded for a sweep
func (h *Handler) SweepArtifacts(c *gin.Context) {
	sweepID, err := core.ParseSweepID(c.Param("sweepId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	artifacts, err := h.reader.GetArtifactsBySweep(c.Request.Context(), sweepID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if len(artifacts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "sweep not found", "sweep_id": sweepID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweep_id": sweepID, "artifacts": artifacts})
}

// Health reports service liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps application error codes onto HTTP statuses
func (h *Handler) renderError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeInvalidStep:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed: %v", err)
	} else {
		h.logger.Debug("rejected request: %v", err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
