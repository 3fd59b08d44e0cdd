// Package service provides business logic for the chart server.
package service

import (
	"encoding/json"
	"fmt"

	"github.com/lcz-viz/server/internal/cache"
	"github.com/lcz-viz/server/internal/render"
	"github.com/lcz-viz/server/pkg/frame"
	"github.com/lcz-viz/server/pkg/lcz"
	"github.com/lcz-viz/server/pkg/scores"
)

// ChartServiceConfig contains chart service configuration.
type ChartServiceConfig struct {
	SchemeID string
	Table    *lcz.ReferenceTable
	Palette  lcz.Palette
	Cache    *cache.Manager
	Renderer *render.ChartRenderer
}

// ChartService renders comparison charts for one classification scheme.
// It is immutable after construction and safe for concurrent handlers.
type ChartService struct {
	schemeID string
	table    *lcz.ReferenceTable
	palette  lcz.Palette
	cache    *cache.Manager
	renderer *render.ChartRenderer
}

// NewChartService creates a new chart service.
func NewChartService(cfg ChartServiceConfig) *ChartService {
	schemeID := cfg.SchemeID
	if schemeID == "" {
		schemeID = "default"
	}

	return &ChartService{
		schemeID: schemeID,
		table:    cfg.Table,
		palette:  cfg.Palette,
		cache:    cfg.Cache,
		renderer: cfg.Renderer,
	}
}

// SchemeID returns the scheme identifier.
func (s *ChartService) SchemeID() string {
	return s.schemeID
}

// Table returns the scheme's reference table.
func (s *ChartService) Table() *lcz.ReferenceTable {
	return s.table
}

// Palette returns the scheme's palette.
func (s *ChartService) Palette() lcz.Palette {
	return s.palette
}

// ComparisonRequest is one chart request. Actual and Predicted must be the
// same length; Codes is required only when UseHue is set.
type ComparisonRequest struct {
	Actual    []float64 `json:"actual"`
	Predicted []float64 `json:"predicted"`
	Codes     []int     `json:"codes,omitempty"`

	TargetTitle string `json:"target_title,omitempty"`
	TargetUnits string `json:"target_units,omitempty"`

	// Scores are annotated in the given order. When ComputeScores is set
	// and no scores are supplied, R2/RMSE/MAE are computed server-side.
	Scores        []scores.Score `json:"scores,omitempty"`
	ComputeScores bool           `json:"compute_scores,omitempty"`

	UseHue      bool `json:"use_hue"`
	PrintScores bool `json:"print_scores"`
}

// RequestError marks a failure caused by the request content rather than
// by the server.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// Validate checks the request shape before any rendering work.
func (r *ComparisonRequest) Validate() error {
	if len(r.Actual) == 0 {
		return fmt.Errorf("request has no records")
	}
	if len(r.Actual) != len(r.Predicted) {
		return fmt.Errorf("actual has %d values, predicted has %d", len(r.Actual), len(r.Predicted))
	}
	if r.UseHue && len(r.Codes) != len(r.Actual) {
		return fmt.Errorf("use_hue requires one code per record: got %d codes for %d records", len(r.Codes), len(r.Actual))
	}
	return nil
}

// ComparisonPNG renders (or serves from cache) the comparison chart for a
// request. Hue classes and their legend order both derive from the
// scheme's reference table, so coloring stays consistent across requests.
func (s *ChartService) ComparisonPNG(req *ComparisonRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, &RequestError{Err: err}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("hash request: %w", err)
	}
	key := cache.ChartKey(s.schemeID, payload)
	if s.cache != nil {
		if data, ok := s.cache.GetChart(key); ok {
			return data, nil
		}
	}

	f := frame.New()
	if err := f.AddNumeric("y_actual", req.Actual); err != nil {
		return nil, err
	}
	if err := f.AddNumeric("y_pred", req.Predicted); err != nil {
		return nil, err
	}

	opts := render.Options{
		ActualField: "y_actual",
		PredField:   "y_pred",
		TargetTitle: req.TargetTitle,
		TargetUnits: req.TargetUnits,
		Scores:      req.Scores,
		UseHue:      req.UseHue,
		PrintScores: req.PrintScores,
	}

	if req.UseHue {
		classes := s.table.MapCodes(req.Codes)
		if err := f.AddLabels("LCZ", classes); err != nil {
			return nil, err
		}
		order := s.table.DisplayOrderClasses(classes)
		// Codes without a table entry map to an empty label, which the
		// table-derived order excludes. Keep those rows in the drawn set so
		// the palette lookup fails instead of silently dropping them.
		for _, class := range classes {
			if class == "" {
				order = append(order, "")
				break
			}
		}
		opts.HueField = "LCZ"
		opts.HueTitle = "LCZ"
		opts.HueOrder = order
		opts.HuePalette = s.palette
	}

	if opts.Scores == nil && req.ComputeScores {
		computed, err := scores.Compute(req.Actual, req.Predicted)
		if err != nil {
			return nil, err
		}
		opts.Scores = computed
	}

	data, err := s.renderer.RenderComparison(f, opts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetChart(key, data); err == nil {
			return data, nil
		}
	}
	return data, nil
}

// LegendEntry is one class of a scheme's legend, in canonical order.
type LegendEntry struct {
	Code  int    `json:"code"`
	Class string `json:"class"`
	Color string `json:"color,omitempty"`
}

// LegendJSON returns the scheme's legend (codes, classes, colors in table
// order) as JSON, cached per scheme.
func (s *ChartService) LegendJSON() ([]byte, error) {
	key := cache.LegendKey(s.schemeID)
	if s.cache != nil {
		if data, ok := s.cache.GetQuery(key); ok {
			return data, nil
		}
	}

	codes := s.table.Codes()
	entries := make([]LegendEntry, 0, len(codes))
	for _, code := range codes {
		class, _ := s.table.Class(code)
		entries = append(entries, LegendEntry{
			Code:  code,
			Class: class,
			Color: s.palette[class],
		})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetQuery(key, data)
	}
	return data, nil
}
