package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/httputil"
	"github.com/matzehuels/shadergraph/pkg/store"
)

// NodeResponse is returned when a node is added.
type NodeResponse struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// edit loads the stored graph, applies fn and stores the result. Nothing is
// written when fn fails. Edits of one graph run one at a time so none is lost.
func (s *Server) edit(r *http.Request, fn func(*graph.Structure) error) error {
	defer s.locks.lock(chi.URLParam(r, "id"))()

	doc, err := s.getDocument(r)
	if err != nil {
		return err
	}
	st, err := doc.Structure(s.registry)
	if err != nil {
		return err
	}
	st.SetLogger(s.logger)
	if err := fn(st); err != nil {
		return err
	}
	return s.store.Put(r.Context(), store.NewDocument(doc.ID, st))
}

// handleAddNode adds one node, given in record form, to a stored graph.
// Outlets in the record are ignored. A missing id is generated.
func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var rec graph.Record
	if err := httputil.DecodeJSON(w, r, s.maxBody, &rec); err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := graph.NewNode(rec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.edit(r, func(st *graph.Structure) error { return st.AddNode(n) }); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, NodeResponse{ID: n.ID(), Type: n.TypeName()})
}

// handleRemoveNode removes a node and every connection touching it.
func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "node")
	if err := s.edit(r, func(st *graph.Structure) error { return st.RemoveNode(id) }); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddConnection(w http.ResponseWriter, r *http.Request) {
	var c graph.Connection
	if err := httputil.DecodeJSON(w, r, s.maxBody, &c); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.edit(r, func(st *graph.Structure) error { return st.AddConnection(c) }); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	var c graph.Connection
	if err := httputil.DecodeJSON(w, r, s.maxBody, &c); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.edit(r, func(st *graph.Structure) error { return st.RemoveConnection(c) }); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
