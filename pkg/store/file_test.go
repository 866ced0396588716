package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
)

func sample(name string, updated time.Time) *drawing.Drawing {
	d := drawing.New(name, grid.DefaultCellSize)
	d.Terminals = []duct.Terminal{
		{Pos: grid.Pt(0, 0), Kind: duct.KindInlet, Flow: 500},
		{Pos: grid.Pt(4, 3), Kind: duct.KindOutlet, Flow: 500},
	}
	d.UpdatedAt = updated
	return d
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer s.Close()

	old := sample("old", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := sample("recent", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	for _, d := range []*drawing.Drawing{old, recent} {
		if err := s.Put(ctx, d); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	got, err := s.Get(ctx, old.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != "old" || len(got.Terminals) != 2 {
		t.Errorf("Get = %+v", got)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].ID != recent.ID {
		t.Errorf("List = %+v, want recent first", list)
	}

	if err := s.Delete(ctx, old.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, old.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get after Delete: err = %v", err)
	}
	if err := s.Delete(ctx, old.ID); err != nil {
		t.Errorf("second Delete should be a no-op: %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"../escape", "a/b", ""} {
		if _, err := s.Get(context.Background(), id); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Get(%q): err = %v, want INVALID_INPUT", id, err)
		}
	}
}
