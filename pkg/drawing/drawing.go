package drawing

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

// Version is the current document format version.
const Version = 1

// Drawing is one saved duct layout.
type Drawing struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name,omitempty" bson:"name,omitempty"`
	Version   int             `json:"version" bson:"version"`
	CellSize  float64         `json:"cell_size_m" bson:"cell_size_m"`
	Strategy  string          `json:"strategy,omitempty" bson:"strategy,omitempty"`
	Params    duct.Params     `json:"params" bson:"params"`
	Terminals []duct.Terminal `json:"terminals" bson:"terminals"`
	Segments  []duct.Segment  `json:"segments" bson:"segments"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// New returns an empty drawing with a fresh ID.
func New(name string, cellSize float64) *Drawing {
	now := time.Now().UTC()
	return &Drawing{
		ID:        uuid.NewString(),
		Name:      name,
		Version:   Version,
		CellSize:  cellSize,
		Params:    duct.DefaultParams(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FromNetwork snapshots net into a new drawing.
func FromNetwork(name string, net *duct.Network, p duct.Params, strategy string) *Drawing {
	d := New(name, net.CellSize())
	d.Capture(net, p, strategy)
	return d
}

// Capture replaces the drawing's content with the current state of net.
func (d *Drawing) Capture(net *duct.Network, p duct.Params, strategy string) {
	d.CellSize = net.CellSize()
	d.Params = p
	d.Strategy = strategy
	d.Terminals = net.Terminals()
	d.Segments = net.Segments()
	d.UpdatedAt = time.Now().UTC()
}

// Network restores the live network. Segments are restored as stored,
// without a rebuild.
func (d *Drawing) Network() (*duct.Network, error) {
	return duct.FromParts(d.CellSize, d.Terminals, d.Segments)
}

// Validate checks the structural invariants of a decoded drawing.
func (d *Drawing) Validate() error {
	if d.Version != Version {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported drawing version %d", d.Version)
	}
	if d.CellSize <= 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "cell size must be positive, got %g", d.CellSize)
	}
	inlets := 0
	seen := make(map[grid.Point]bool, len(d.Terminals))
	for _, t := range d.Terminals {
		if t.IsInlet() {
			inlets++
		}
		if seen[t.Pos] {
			return errors.New(errors.ErrCodeInvalidFormat, "two terminals at %v", t.Pos)
		}
		seen[t.Pos] = true
	}
	if inlets > 1 {
		return errors.New(errors.ErrCodeInvalidFormat, "drawing has %d inlets", inlets)
	}
	if err := duct.CheckAxisAligned(d.Segments); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid segment")
	}
	return nil
}

// Read decodes and validates a drawing from r. Read does not close r.
func Read(r io.Reader) (*Drawing, error) {
	var d Drawing
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode drawing")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Write encodes d as indented JSON.
func Write(d *Drawing, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode drawing")
	}
	return nil
}

// Load reads a drawing file.
func Load(path string) (*Drawing, error) {
	if err := errors.ValidateDrawingPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

// Save writes d to path, replacing any existing file.
func Save(d *Drawing, path string) error {
	if err := errors.ValidateDrawingPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := Write(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
