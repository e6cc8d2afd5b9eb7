// Package store persists named graph documents.
//
// A [Document] holds a graph in its record form (see graph.Record) together
// with bookkeeping timestamps. Two backends implement [Store]:
//
//   - [FileStore]: one JSON file per document, used by the CLI and by
//     single-instance deployments of the HTTP service
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Document ids are validated with errors.ValidateDocumentName before they
// reach a backend, so a FileStore id can never escape its directory.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored graph.
type Document struct {
	ID        string                  `json:"id" bson:"_id"`
	Graph     map[string]graph.Record `json:"graph" bson:"graph"`
	CreatedAt time.Time               `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt" bson:"updatedAt"`
}

// NewDocument captures the current state of s under id.
func NewDocument(id string, s *graph.Structure) *Document {
	return &Document{ID: id, Graph: s.ToRecords()}
}

// Structure rebuilds the stored graph against reg.
func (d *Document) Structure(reg nodetype.Registry) (*graph.Structure, error) {
	return graph.FromRecords(reg, d.Graph)
}

// Info summarizes a stored document for listings.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Store is a keyed collection of graph documents.
type Store interface {
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Put creates or replaces a document. CreatedAt is preserved across
	// replacements and UpdatedAt is set to the current time.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document, returning ErrNotFound if it did not exist.
	Delete(ctx context.Context, id string) error

	// List returns every stored document ordered by id.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

func infoOf(d *Document) Info {
	return Info{ID: d.ID, Nodes: len(d.Graph), UpdatedAt: d.UpdatedAt}
}

func sortInfos(infos []Info) []Info {
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.ID, b.ID) })
	return infos
}
