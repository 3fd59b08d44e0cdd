// Package api provides HTTP handlers for the LCZ chart server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lcz-viz/server/internal/render"
	"github.com/lcz-viz/server/internal/service"
	"github.com/lcz-viz/server/pkg/frame"
	"github.com/lcz-viz/server/pkg/lcz"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Registry    *SchemeRegistry
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Global schemes endpoint (not scheme-scoped)
	r.Get("/api/schemes", schemesHandler(cfg.Registry))

	// Scheme-scoped routes: /s/{scheme}/...
	r.Route("/s/{scheme}", func(r chi.Router) {
		r.Use(schemeMiddleware(cfg.Registry))

		r.Route("/api", func(r chi.Router) {
			r.Get("/classes", schemeClassesHandler)
			r.Get("/palette", schemePaletteHandler)
			r.Get("/legend", schemeLegendHandler)
			r.Get("/order", schemeOrderHandler)
			r.Post("/charts/comparison", schemeComparisonChartHandler)
		})
	})

	return r
}

// Context key for scheme service
type ctxKey string

const schemeServiceKey ctxKey = "schemeService"

// schemeMiddleware resolves the scheme from URL and injects the chart
// service into context.
func schemeMiddleware(registry *SchemeRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			schemeID := chi.URLParam(r, "scheme")
			svc := registry.Get(schemeID)
			if svc == nil {
				http.Error(w, "scheme not found: "+schemeID, http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), schemeServiceKey, svc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getSchemeService(r *http.Request) *service.ChartService {
	if svc, ok := r.Context().Value(schemeServiceKey).(*service.ChartService); ok {
		return svc
	}
	return nil
}

// schemesHandler returns the list of available schemes.
func schemesHandler(registry *SchemeRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"default": registry.DefaultSchemeID(),
			"schemes": registry.Schemes(),
			"title":   registry.Title(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// schemeClassesHandler returns the scheme's codes and classes in canonical
// order.
func schemeClassesHandler(w http.ResponseWriter, r *http.Request) {
	svc := getSchemeService(r)
	if svc == nil {
		http.Error(w, "scheme service not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"codes":   svc.Table().Codes(),
		"classes": svc.Table().Classes(),
	})
}

// schemePaletteHandler returns the scheme's palette verbatim.
func schemePaletteHandler(w http.ResponseWriter, r *http.Request) {
	svc := getSchemeService(r)
	if svc == nil {
		http.Error(w, "scheme service not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(svc.Palette())
}

// schemeLegendHandler returns the ordered class/color legend entries.
func schemeLegendHandler(w http.ResponseWriter, r *http.Request) {
	svc := getSchemeService(r)
	if svc == nil {
		http.Error(w, "scheme service not found", http.StatusInternalServerError)
		return
	}

	data, err := svc.LegendJSON()
	if err != nil {
		http.Error(w, "failed to build legend: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// schemeOrderHandler returns the display order for observed values.
// Query params: kind=num|class, values=comma-separated observed values.
func schemeOrderHandler(w http.ResponseWriter, r *http.Request) {
	svc := getSchemeService(r)
	if svc == nil {
		http.Error(w, "scheme service not found", http.StatusInternalServerError)
		return
	}

	kind, err := lcz.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var observed []string
	if raw := r.URL.Query().Get("values"); raw != "" {
		for _, v := range strings.Split(raw, ",") {
			observed = append(observed, strings.TrimSpace(v))
		}
	}

	order, err := svc.Table().DisplayOrder(observed, kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"kind":  kind.String(),
		"order": order,
	})
}

// schemeComparisonChartHandler renders a comparison chart from a JSON
// request body and responds with PNG bytes.
func schemeComparisonChartHandler(w http.ResponseWriter, r *http.Request) {
	svc := getSchemeService(r)
	if svc == nil {
		http.Error(w, "scheme service not found", http.StatusInternalServerError)
		return
	}

	var req service.ComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	data, err := svc.ComparisonPNG(&req)
	if err != nil {
		http.Error(w, err.Error(), chartErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// chartErrorStatus maps chart failures to HTTP status codes: recognized
// request-content mistakes are 400s, everything else is a 500.
func chartErrorStatus(err error) int {
	var (
		nf       *frame.FieldNotFoundError
		reqErr   *service.RequestError
		colorErr *render.MissingColorError
	)
	if errors.As(err, &nf) || errors.As(err, &reqErr) || errors.As(err, &colorErr) ||
		errors.Is(err, lcz.ErrUnknownKind) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
