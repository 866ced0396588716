package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/observability"
	"github.com/matzehuels/ductwork/pkg/store"
)

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{Cache: fc, Logger: log.New(io.Discard)}
	if withStore {
		st, err := store.NewFileStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		cfg.Store = st
	}
	srv := New(cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, status int, code errors.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d", resp.StatusCode, status)
	}
	body := decodeBody[errorBody](t, resp)
	if body.Code != code {
		t.Errorf("code = %s, want %s (%s)", body.Code, code, body.Message)
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, false)

	if resp := do(t, ts, http.MethodGet, "/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	resp := do(t, ts, http.MethodGet, "/version", nil)
	info := decodeBody[map[string]any](t, resp)
	if _, ok := info["version"]; !ok {
		t.Errorf("version response = %v", info)
	}
}

func TestSize(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name   string
		body   any
		status int
		code   errors.Code
	}{
		{"default params", sizeRequest{Flow: 1000}, http.StatusOK, ""},
		{"explicit params", sizeRequest{Flow: 1000, Params: &duct.Params{PressureDrop: 0.08, AspectRatio: 3, Step: 50}}, http.StatusOK, ""},
		{"negative flow", sizeRequest{Flow: -1}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad ratio", sizeRequest{Flow: 1000, Params: &duct.Params{PressureDrop: 0.1, AspectRatio: 9}}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", map[string]any{"flow": 10, "speed": 3}, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, http.MethodPost, "/v1/size", tt.body)
			if tt.code != "" {
				expectError(t, resp, tt.status, tt.code)
				return
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			got := decodeBody[sizeResponse](t, resp)
			if got.Width < got.Height || got.Height <= 0 || got.Label == "" {
				t.Errorf("size = %+v", got)
			}
		})
	}
}

func TestSupply(t *testing.T) {
	ts := newTestServer(t, false)

	resp := do(t, ts, http.MethodPost, "/v1/supply", map[string]any{
		"temperatures": map[string]float64{"indoor": 26, "supply": 16},
		"rooms": []map[string]any{
			{"name": "office", "area_m2": 36, "norm_w_m2": 80, "equip_w_m2": 20},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var sched struct {
		Total int `json:"total_m3h"`
		Rows  []struct {
			Diffusers int `json:"diffusers"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sched); err != nil {
		t.Fatal(err)
	}
	if sched.Total <= 0 || len(sched.Rows) != 1 || sched.Rows[0].Diffusers != 4 {
		t.Errorf("schedule = %+v", sched)
	}

	resp = do(t, ts, http.MethodPost, "/v1/supply", map[string]any{
		"temperatures": map[string]float64{"indoor": 16, "supply": 26},
		"rooms":        []map[string]any{{"name": "x", "area_m2": 10, "norm_w_m2": 50}},
	})
	expectError(t, resp, http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

func buildBody() map[string]any {
	return map[string]any{
		"inlet": duct.Terminal{Pos: grid.Pt(0, 0), Flow: 1000},
		"outlets": []duct.Terminal{
			{Pos: grid.Pt(4, 0), Flow: 500},
			{Pos: grid.Pt(4, 3), Flow: 500},
		},
		"options": map[string]any{"formats": []string{"json"}},
	}
}

func TestBuild(t *testing.T) {
	ts := newTestServer(t, false)

	first := decodeBody[buildResponse](t, do(t, ts, http.MethodPost, "/v1/build", buildBody()))
	if first.Strategy != "spine" || len(first.Segments) == 0 || first.Skipped != 0 {
		t.Fatalf("first build = %+v", first)
	}
	if first.Cached.Build {
		t.Error("first build reported a cache hit")
	}
	if len(first.Artifacts["json"]) == 0 || first.Material.Length <= 0 {
		t.Errorf("artifacts = %v, material = %+v", first.Artifacts, first.Material)
	}

	second := decodeBody[buildResponse](t, do(t, ts, http.MethodPost, "/v1/build", buildBody()))
	if !second.Cached.Build || !second.Cached.Render {
		t.Errorf("second build cached = %+v, want hits", second.Cached)
	}

	body := buildBody()
	body["options"] = map[string]any{"strategy": "steiner", "formats": []string{"dot"}}
	steiner := decodeBody[buildResponse](t, do(t, ts, http.MethodPost, "/v1/build", body))
	if steiner.Strategy != "steiner" || !strings.Contains(string(steiner.Artifacts["dot"]), "digraph") {
		t.Errorf("steiner build = %+v", steiner)
	}
}

func TestBuildWarnings(t *testing.T) {
	ts := newTestServer(t, false)

	body := buildBody()
	body["outlets"] = []duct.Terminal{{Pos: grid.Pt(4, 0), Flow: 300}, {Pos: grid.Pt(4, 3), Flow: 300}}
	got := decodeBody[buildResponse](t, do(t, ts, http.MethodPost, "/v1/build", body))
	if len(got.Warnings) != 1 || got.Warnings[0].Code != errors.ErrCodeFlowImbalance {
		t.Errorf("warnings = %+v, want one FLOW_IMBALANCE", got.Warnings)
	}
}

func TestBuildErrors(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		status int
		code   errors.Code
	}{
		{"no outlets", func(b map[string]any) { b["outlets"] = []duct.Terminal{} }, http.StatusUnprocessableEntity, errors.ErrCodeIncompleteTopology},
		{"zero inlet flow", func(b map[string]any) { b["inlet"] = duct.Terminal{Pos: grid.Pt(0, 0)} }, http.StatusUnprocessableEntity, errors.ErrCodeIncompleteTopology},
		{"bad strategy", func(b map[string]any) { b["options"] = map[string]any{"strategy": "zigzag"} }, http.StatusBadRequest, errors.ErrCodeInvalidStrategy},
		{"bad format", func(b map[string]any) { b["options"] = map[string]any{"formats": []string{"gif"}} }, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildBody()
			tt.mutate(body)
			expectError(t, do(t, ts, http.MethodPost, "/v1/build", body), tt.status, tt.code)
		})
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, false)

	built := decodeBody[buildResponse](t, do(t, ts, http.MethodPost, "/v1/build", buildBody()))
	req := renderRequest{
		CellSize: 0.5,
		Terminals: []duct.Terminal{
			{Pos: grid.Pt(0, 0), Kind: duct.KindInlet, Flow: 1000},
			{Pos: grid.Pt(4, 0), Kind: duct.KindOutlet, Flow: 500},
			{Pos: grid.Pt(4, 3), Kind: duct.KindOutlet, Flow: 500},
		},
		Segments: built.Segments,
	}

	resp := do(t, ts, http.MethodPost, "/v1/render?format=svg", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := resp.Header.Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("body does not start with <svg: %.40q", data)
	}

	if got := do(t, ts, http.MethodPost, "/v1/render?format=svg", req).Header.Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}

	req.Segments = []duct.Segment{{A: grid.Pt(0, 0), B: grid.Pt(2, 2)}}
	expectError(t, do(t, ts, http.MethodPost, "/v1/render", req), http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

func TestDrawingsWithoutStore(t *testing.T) {
	ts := newTestServer(t, false)
	expectError(t, do(t, ts, http.MethodGet, "/v1/drawings", nil), http.StatusNotImplemented, errors.ErrCodeUnsupported)
}

func TestDrawingLifecycle(t *testing.T) {
	ts := newTestServer(t, true)

	d := drawing.New("riser", 0.5)
	d.Terminals = []duct.Terminal{
		{Pos: grid.Pt(0, 0), Kind: duct.KindInlet, Flow: 500},
		{Pos: grid.Pt(4, 3), Kind: duct.KindOutlet, Flow: 500},
	}
	path := "/v1/drawings/" + d.ID

	if resp := do(t, ts, http.MethodPut, path, d); resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}

	list := decodeBody[struct {
		Drawings []store.Summary `json:"drawings"`
	}](t, do(t, ts, http.MethodGet, "/v1/drawings", nil))
	if len(list.Drawings) != 1 || list.Drawings[0].ID != d.ID {
		t.Fatalf("list = %+v", list.Drawings)
	}

	built := decodeBody[buildResponse](t, do(t, ts, http.MethodPost, path+"/build", nil))
	if len(built.Segments) != 2 {
		t.Fatalf("build segments = %+v", built.Segments)
	}

	moved := decodeBody[moveResponse](t, do(t, ts, http.MethodPost, path+"/move", moveRequest{Index: 1, Delta: 2}))
	if moved.Report.Delta != grid.Pt(2, 0) || moved.Report.Split != 1 || len(moved.Segments) != 3 {
		t.Errorf("move = %+v", moved)
	}

	got := decodeBody[drawing.Drawing](t, do(t, ts, http.MethodGet, path, nil))
	if len(got.Segments) != 3 || got.Strategy != "spine" {
		t.Errorf("stored drawing = %+v", got)
	}

	resp := do(t, ts, http.MethodGet, path+"/render?format=json&labels=true", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("render status = %d, type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	expectError(t, do(t, ts, http.MethodPost, path+"/move", moveRequest{Index: 9, Delta: 1}),
		http.StatusNotFound, errors.ErrCodeSegmentNotFound)

	if resp := do(t, ts, http.MethodDelete, path, nil); resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	expectError(t, do(t, ts, http.MethodGet, path, nil), http.StatusNotFound, errors.ErrCodeNotFound)
}

func TestPutDrawingIDMismatch(t *testing.T) {
	ts := newTestServer(t, true)

	d := drawing.New("x", 0.5)
	expectError(t, do(t, ts, http.MethodPut, "/v1/drawings/other", d), http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingServerHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
	h.status = append(h.status, status)
}

func TestServerHooksSeeRoutePatterns(t *testing.T) {
	hooks := &recordingServerHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, true)
	do(t, ts, http.MethodPost, "/v1/size", sizeRequest{Flow: 500})
	do(t, ts, http.MethodGet, "/v1/drawings/missing", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := []string{"POST /v1/size", "GET /v1/drawings/{id}"}
	if len(hooks.routes) != len(want) {
		t.Fatalf("routes = %v, want %v", hooks.routes, want)
	}
	for i := range want {
		if strings.TrimSuffix(hooks.routes[i], "/") != want[i] {
			t.Errorf("route[%d] = %q, want %q", i, hooks.routes[i], want[i])
		}
	}
	if hooks.status[1] != http.StatusNotFound {
		t.Errorf("status = %v", hooks.status)
	}
}
