// Package store persists drawings.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per drawing in a directory, for the CLI
//   - [MongoStore]: a MongoDB collection, for the HTTP server
//
// Both key drawings by [drawing.Drawing.ID] and return an error with code
// NOT_FOUND for unknown IDs.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/ductwork/pkg/drawing"
)

// Summary is the listing entry for one stored drawing.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Strategy  string    `json:"strategy" bson:"strategy"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for drawing storage backends.
type Store interface {
	// Get retrieves a drawing by ID.
	Get(ctx context.Context, id string) (*drawing.Drawing, error)

	// Put creates or replaces a drawing.
	Put(ctx context.Context, d *drawing.Drawing) error

	// Delete removes a drawing. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all drawings, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}

func summarize(d *drawing.Drawing) Summary {
	return Summary{ID: d.ID, Name: d.Name, Strategy: d.Strategy, UpdatedAt: d.UpdatedAt}
}
