package server

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/shadergraph/pkg/buildinfo"
	"github.com/matzehuels/shadergraph/pkg/decl"
	"github.com/matzehuels/shadergraph/pkg/errors"
	"github.com/matzehuels/shadergraph/pkg/graph"
	"github.com/matzehuels/shadergraph/pkg/httputil"
	"github.com/matzehuels/shadergraph/pkg/nodetype"
	"github.com/matzehuels/shadergraph/pkg/observability"
	"github.com/matzehuels/shadergraph/pkg/pipeline"
	"github.com/matzehuels/shadergraph/pkg/registry"
	"github.com/matzehuels/shadergraph/pkg/store"
)

// BuildResponse is returned by the build endpoints.
type BuildResponse struct {
	Source    string   `json:"source"`
	Order     []string `json:"order"`
	Cached    bool     `json:"cached"`
	GraphHash string   `json:"graphHash"`
}

// TypesResponse lists the registry.
type TypesResponse struct {
	RegistryHash string                 `json:"registryHash"`
	Types        []*nodetype.Definition `json:"types"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httputil.WriteError(w, err)
	route := r.URL.Path
	if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()
	resp := TypesResponse{
		RegistryHash: registry.Hash(s.registry),
		Types:        make([]*nodetype.Definition, 0, len(names)),
	}
	for _, name := range names {
		if def, ok := s.registry.Lookup(name); ok {
			resp.Types = append(resp.Types, def)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := s.registry.Lookup(name)
	if !ok {
		s.fail(w, r, errors.New(errors.ErrCodeNotFound, "unknown node type %q", name))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(decl.StringifyNodeDefinition(*def)))
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	st, err := s.decodeStructure(w, r, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.build(w, r, st)
}

func (s *Server) build(w http.ResponseWriter, r *http.Request, st *graph.Structure) {
	opts := pipeline.Options{Refresh: queryBool(r, "refresh")}
	res, err := s.runner.BuildStructure(r.Context(), st, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BuildResponse{
		Source:    res.Source,
		Order:     res.Order,
		Cached:    res.CacheInfo.BuildHit,
		GraphHash: res.GraphHash,
	})
}

// decodeStructure reads a record map from the request body. Stored graphs may
// start empty and be filled through the node and connection routes.
func (s *Server) decodeStructure(w http.ResponseWriter, r *http.Request, allowEmpty bool) (*graph.Structure, error) {
	var records map[string]graph.Record
	if err := httputil.DecodeJSON(w, r, s.maxBody, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 && !allowEmpty {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph has no nodes")
	}
	return graph.FromRecords(s.registry, records)
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	httputil.WriteJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := s.getDocument(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDocumentName(id); err != nil {
		s.fail(w, r, err)
		return
	}
	st, err := s.decodeStructure(w, r, true)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	doc := store.NewDocument(id, st)
	unlock := s.locks.lock(id)
	err = s.store.Put(r.Context(), doc)
	unlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("stored graph", "id", id, "nodes", st.Len())
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	err := s.store.Delete(r.Context(), id)
	unlock()
	if err != nil {
		s.fail(w, r, storeError(err, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBuildGraph(w http.ResponseWriter, r *http.Request) {
	st, err := s.loadStructure(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.build(w, r, st)
}

func (s *Server) handleRenderGraph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "render"))
		return
	}

	st, err := s.loadStructure(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: queryBool(r, "detailed"),
		Refresh:  queryBool(r, "refresh"),
	}
	artifacts, _, err := s.runner.Render(r.Context(), st, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

func (s *Server) getDocument(r *http.Request) (*store.Document, error) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, storeError(err, id)
	}
	return doc, nil
}

func (s *Server) loadStructure(r *http.Request) (*graph.Structure, error) {
	doc, err := s.getDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Structure(s.registry)
}

func storeError(err error, id string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.Wrap(errors.ErrCodeNotFound, err, "graph %q", id)
	}
	return err
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
