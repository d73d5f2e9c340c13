package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harel-coffee/ClimWIP-auto/internal/adapter/regions"
	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
	"github.com/harel-coffee/ClimWIP-auto/internal/usecase"
)

// Handler handles HTTP requests for diagnostic computation.
type Handler struct {
	pipeline  *usecase.Pipeline
	catalog   *regions.Catalog
	regionDir string
}

// NewHandler creates a new HTTP handler.
func NewHandler(pipeline *usecase.Pipeline, catalog *regions.Catalog, regionDir string) *Handler {
	return &Handler{
		pipeline:  pipeline,
		catalog:   catalog,
		regionDir: regionDir,
	}
}

// ComputeRequest is the JSON body of POST /v1/diagnostics.
type ComputeRequest struct {
	InputPath  string `json:"input_path" binding:"required"`
	Diagnostic struct {
		Name         string   `json:"name" binding:"required"`
		Constituents []string `json:"constituents"`
	} `json:"diagnostic" binding:"required"`
	TimePeriod  []string `json:"time_period"`
	Season      string   `json:"season"`
	Aggregation string   `json:"aggregation"`
	Region      []string `json:"region"`
	MaskOcean   bool     `json:"mask_ocean"`
	Overwrite   bool     `json:"overwrite"`
	Regrid      bool     `json:"regrid"`
}

// ComputeResponse describes the computed diagnostic.
type ComputeResponse struct {
	Name   string `json:"name"`
	Units  string `json:"units"`
	Shape  []int  `json:"shape"`
	Season string `json:"season"`
	Region string `json:"region"`
}

// ComputeDiagnostic handles POST /v1/diagnostics.
func (h *Handler) ComputeDiagnostic(c *gin.Context) {
	var body ComputeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	season, err := domain.ParseSeason(body.Season)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agg, err := domain.ParseAggregation(body.Aggregation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	region, err := usecase.ResolveRegionTokens(h.catalog, h.regionDir, body.Region)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var window *domain.TimeWindow
	switch len(body.TimePeriod) {
	case 0:
	case 2:
		window = &domain.TimeWindow{Start: body.TimePeriod[0], End: body.TimePeriod[1]}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "time_period must have exactly two entries"})
		return
	}

	req := usecase.BasicRequest{
		InputPath:   body.InputPath,
		Window:      window,
		Season:      season,
		Aggregation: agg,
		Region:      region,
		MaskOcean:   body.MaskOcean,
		Overwrite:   body.Overwrite,
		Regrid:      body.Regrid,
	}
	spec := usecase.DiagnosticSpec{
		Name:         body.Diagnostic.Name,
		Constituents: body.Diagnostic.Constituents,
	}

	f, err := h.pipeline.Compute(spec, req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ComputeResponse{
		Name:   f.Name,
		Units:  f.Units,
		Shape:  f.Data.Shape,
		Season: string(season),
		Region: region.Key(),
	})
}

// statusFor maps pipeline errors onto HTTP statuses: requests that
// name bad inputs get 422, everything else 500.
func statusFor(err error) int {
	for _, sentinel := range []error{
		domain.ErrGridMismatch,
		domain.ErrUnsupportedUnit,
		domain.ErrUnknownRegionFile,
		domain.ErrInvalidRegionGeometry,
		domain.ErrEmptyRegion,
		domain.ErrEmptySelection,
		domain.ErrUnsupportedSeason,
		domain.ErrUnsupportedAggregation,
		domain.ErrInvalidDerivation,
	} {
		if errors.Is(err, sentinel) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// RegionInfo describes one catalog region.
type RegionInfo struct {
	Code   int    `json:"code"`
	Abbrev string `json:"abbrev"`
	Name   string `json:"name"`
}

// GetRegions handles GET /v1/regions.
func (h *Handler) GetRegions(c *gin.Context) {
	catalog := h.catalog.Regions()
	response := make([]RegionInfo, len(catalog))
	for i, r := range catalog {
		response[i] = RegionInfo{Code: r.Code, Abbrev: r.Abbrev, Name: r.Name}
	}
	c.JSON(http.StatusOK, gin.H{
		"regions": response,
		"count":   len(response),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
