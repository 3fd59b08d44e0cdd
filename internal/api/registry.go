package api

import (
	"github.com/lcz-viz/server/internal/service"
)

// SchemeInfo contains information about a classification scheme for the
// API response.
type SchemeInfo struct {
	ID      string `json:"id"`
	Classes int    `json:"classes"`
}

// SchemeRegistry holds chart services for all configured schemes.
type SchemeRegistry struct {
	services      map[string]*service.ChartService
	defaultScheme string
	schemeOrder   []string
	title         string
}

// NewSchemeRegistry creates a new scheme registry.
func NewSchemeRegistry(defaultScheme string, order []string, title string) *SchemeRegistry {
	return &SchemeRegistry{
		services:      make(map[string]*service.ChartService),
		defaultScheme: defaultScheme,
		schemeOrder:   order,
		title:         title,
	}
}

// Register adds a chart service for a scheme.
func (r *SchemeRegistry) Register(schemeID string, svc *service.ChartService) {
	r.services[schemeID] = svc
}

// Get returns the chart service for a scheme, or nil if not found.
func (r *SchemeRegistry) Get(schemeID string) *service.ChartService {
	return r.services[schemeID]
}

// Default returns the default scheme's chart service.
func (r *SchemeRegistry) Default() *service.ChartService {
	return r.services[r.defaultScheme]
}

// DefaultSchemeID returns the default scheme ID.
func (r *SchemeRegistry) DefaultSchemeID() string {
	return r.defaultScheme
}

// SchemeIDs returns all scheme IDs in config order.
func (r *SchemeRegistry) SchemeIDs() []string {
	return r.schemeOrder
}

// Title returns the configured site title.
func (r *SchemeRegistry) Title() string {
	if r.title != "" {
		return r.title
	}
	return "LCZ Charts"
}

// Schemes returns scheme info for all registered schemes.
func (r *SchemeRegistry) Schemes() []SchemeInfo {
	infos := make([]SchemeInfo, 0, len(r.schemeOrder))
	for _, id := range r.schemeOrder {
		classes := 0
		if svc := r.services[id]; svc != nil && svc.Table() != nil {
			classes = svc.Table().Len()
		}
		infos = append(infos, SchemeInfo{
			ID:      id,
			Classes: classes,
		})
	}
	return infos
}
