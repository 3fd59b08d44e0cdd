package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lcz-viz/server/internal/cache"
	"github.com/lcz-viz/server/internal/render"
	"github.com/lcz-viz/server/internal/service"
	"github.com/lcz-viz/server/pkg/frame"
	"github.com/lcz-viz/server/pkg/lcz"
)

// testServer holds the test server and its dependencies
type testServer struct {
	server *httptest.Server
	cache  *cache.Manager
}

// setupTestServer initializes all components and returns a test server
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	table, err := lcz.ParseReferenceTable([]byte(`{"2": "LCZ 2", "6": "LCZ 6", "107": "LCZ G"}`))
	if err != nil {
		t.Fatalf("Failed to parse reference table: %v", err)
	}

	cacheManager, err := cache.NewManager(cache.Config{
		ChartCacheSizeMB: 8, // Smaller cache for tests
		ChartTTL:         5 * time.Minute,
		QueryCacheSize:   100,
	})
	if err != nil {
		t.Fatalf("Failed to initialize cache: %v", err)
	}

	chartService := service.NewChartService(service.ChartServiceConfig{
		SchemeID: "lcz",
		Table:    table,
		Palette: lcz.Palette{
			"LCZ 2": "#d10000",
			"LCZ 6": "#ff9955",
			"LCZ G": "#6a6aff",
		},
		Cache:    cacheManager,
		Renderer: render.NewChartRenderer(render.Style{WidthPx: 400, HeightPx: 300}),
	})

	registry := NewSchemeRegistry("lcz", []string{"lcz"}, "")
	registry.Register("lcz", chartService)

	router := NewRouter(RouterConfig{
		Registry:    registry,
		CORSOrigins: []string{"http://localhost:3000"},
	})

	server := httptest.NewServer(router)

	return &testServer{
		server: server,
		cache:  cacheManager,
	}
}

func (ts *testServer) close() {
	ts.server.Close()
	ts.cache.Close()
}

func assertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	resp.Body.Close()
	return body
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	resp, err := http.Get(ts.server.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusOK)
	if body := readBody(t, resp); string(body) != "OK" {
		t.Errorf("Expected body OK, got %q", body)
	}
}

func TestSchemesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	resp, err := http.Get(ts.server.URL + "/api/schemes")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusOK)

	var payload struct {
		Default string       `json:"default"`
		Schemes []SchemeInfo `json:"schemes"`
	}
	if err := json.Unmarshal(readBody(t, resp), &payload); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if payload.Default != "lcz" {
		t.Errorf("Expected default scheme lcz, got %q", payload.Default)
	}
	if len(payload.Schemes) != 1 || payload.Schemes[0].Classes != 3 {
		t.Errorf("Unexpected schemes payload: %+v", payload.Schemes)
	}
}

func TestClassesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	resp, err := http.Get(ts.server.URL + "/s/lcz/api/classes")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusOK)

	var payload struct {
		Codes   []int    `json:"codes"`
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(readBody(t, resp), &payload); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(payload.Codes) != 3 || payload.Codes[0] != 2 || payload.Classes[2] != "LCZ G" {
		t.Errorf("Unexpected classes payload: %+v", payload)
	}
}

func TestUnknownScheme(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	resp, err := http.Get(ts.server.URL + "/s/nope/api/classes")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestOrderEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	resp, err := http.Get(ts.server.URL + "/s/lcz/api/order?kind=class&values=" + url.QueryEscape("LCZ G,LCZ 2,LCZ 2"))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusOK)

	var payload struct {
		Order []string `json:"order"`
	}
	if err := json.Unmarshal(readBody(t, resp), &payload); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(payload.Order) != 2 || payload.Order[0] != "LCZ 2" || payload.Order[1] != "LCZ G" {
		t.Errorf("Expected table order [LCZ 2, LCZ G], got %v", payload.Order)
	}
}

func TestOrderEndpoint_BadKind(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	resp, err := http.Get(ts.server.URL + "/s/lcz/api/order?kind=fancy&values=x")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestComparisonChartEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	reqBody, err := json.Marshal(service.ComparisonRequest{
		Actual:        []float64{284, 287, 291, 295},
		Predicted:     []float64{285, 286, 290, 296},
		Codes:         []int{2, 6, 2, 107},
		TargetTitle:   "LST",
		TargetUnits:   "K",
		UseHue:        true,
		PrintScores:   true,
		ComputeScores: true,
	})
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	resp, err := http.Post(ts.server.URL+"/s/lcz/api/charts/comparison", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	assertStatusCode(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected Content-Type image/png, got %q", ct)
	}

	if _, err := png.Decode(bytes.NewReader(readBody(t, resp))); err != nil {
		t.Errorf("Response is not a decodable PNG: %v", err)
	}
}

func TestComparisonChartEndpoint_BadRequest(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.close()

	cases := map[string]string{
		"notJSON":        `{"actual": [1,`,
		"lengthMismatch": `{"actual": [1, 2], "predicted": [1]}`,
		"empty":          `{}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(ts.server.URL+"/s/lcz/api/charts/comparison", "application/json", bytes.NewReader([]byte(body)))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			assertStatusCode(t, resp, http.StatusBadRequest)
			resp.Body.Close()
		})
	}
}

func TestChartErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"fieldNotFound", &frame.FieldNotFoundError{Field: "y_actual"}, http.StatusBadRequest},
		{"badRequest", &service.RequestError{Err: errors.New("request has no records")}, http.StatusBadRequest},
		{"missingColor", &render.MissingColorError{Class: "LCZ X"}, http.StatusBadRequest},
		{"unknownKind", lcz.ErrUnknownKind, http.StatusBadRequest},
		{"resource", &lcz.ResourceError{Path: "t.json", Err: errors.New("no such file")}, http.StatusInternalServerError},
		{"renderFailure", errors.New("render: identity line: no data"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := chartErrorStatus(tc.err); got != tc.want {
				t.Errorf("status for %v: got %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
