package drawing

import (
	"bytes"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/spine"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

func builtNetwork(t *testing.T) *duct.Network {
	t.Helper()
	net := duct.New(grid.DefaultCellSize)
	net.SetLogger(log.New(io.Discard))
	net.SetInlet(grid.Pt(0, 0), 1000)
	for _, p := range []grid.Point{grid.Pt(2, 2), grid.Pt(4, 4), grid.Pt(6, 6)} {
		if err := net.AddOutlet(p, 1000.0/3); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := net.Rebuild(spine.New(), duct.DefaultParams()); err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}
	return net
}

func TestRoundTrip(t *testing.T) {
	net := builtNetwork(t)
	d := FromNetwork("level 2", net, duct.DefaultParams(), spine.Name)

	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	if !reflect.DeepEqual(got.Terminals, d.Terminals) {
		t.Errorf("terminals changed:\n%v\n%v", got.Terminals, d.Terminals)
	}
	if !reflect.DeepEqual(got.Segments, d.Segments) {
		t.Errorf("segments changed:\n%v\n%v", got.Segments, d.Segments)
	}
	if got.ID != d.ID || got.Params != d.Params || got.Strategy != spine.Name {
		t.Errorf("header changed: %+v", got)
	}

	restored, err := got.Network()
	if err != nil {
		t.Fatalf("Network error: %v", err)
	}
	if !reflect.DeepEqual(restored.Segments(), net.Segments()) {
		t.Error("restored network differs")
	}
}

func TestSaveLoad(t *testing.T) {
	d := FromNetwork("plan", builtNetwork(t), duct.DefaultParams(), spine.Name)
	path := filepath.Join(t.TempDir(), "plan.json")

	if err := Save(d, path); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(got.Segments) != len(d.Segments) {
		t.Errorf("segments = %d, want %d", len(got.Segments), len(d.Segments))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v", err)
	}
	if err := Save(d, filepath.Join(t.TempDir(), "plan.txt")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("bad extension: err = %v", err)
	}
}

func TestReadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"id": `},
		{"unknown field", `{"id":"x","version":1,"cell_size_m":0.5,"extra":true}`},
		{"version", `{"id":"x","version":9,"cell_size_m":0.5}`},
		{"cell size", `{"id":"x","version":1,"cell_size_m":0}`},
		{"two inlets", `{"id":"x","version":1,"cell_size_m":0.5,"terminals":[
			{"pos":{"x":0,"y":0},"kind":"inlet","flow":1},
			{"pos":{"x":1,"y":0},"kind":"inlet","flow":1}]}`},
		{"diagonal", `{"id":"x","version":1,"cell_size_m":0.5,"segments":[
			{"a":{"x":0,"y":0},"b":{"x":2,"y":3},"orientation":"horizontal","flow":1,"width_mm":0,"height_mm":0}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.json))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestNewAssignsID(t *testing.T) {
	a, b := New("a", 0.5), New("b", 0.5)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs not unique: %q %q", a.ID, b.ID)
	}
	if err := errors.ValidateDrawingID(a.ID); err != nil {
		t.Errorf("generated ID rejected: %v", err)
	}
}
