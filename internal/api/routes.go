package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/editor"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/export"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/media"
)

// maxBodyBytes caps request bodies, documents included.
const maxBodyBytes = 8 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	sources := media.NewServer(cfg.Logger)

	r.Get("/health", healthHandler(cfg))
	r.With(LoopbackGuard()).Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Route("/projects/{id}", func(r chi.Router) {
			r.Get("/", getProjectHandler(cfg))
			r.Patch("/", renameProjectHandler(cfg))
			r.Delete("/", deleteProjectHandler(cfg))
			r.Post("/actions", dispatchHandler(cfg))
			r.Post("/undo", historyHandler(cfg, "undo"))
			r.Post("/redo", historyHandler(cfg, "redo"))
			r.Get("/document", getDocumentHandler(cfg))
			r.Put("/document", putDocumentHandler(cfg))
			r.Post("/save", saveHandler(cfg))
			r.Post("/close", closeHandler(cfg))
			r.Post("/export", exportHandler(cfg))

			r.With(LoopbackGuard()).Group(func(r chi.Router) {
				r.Get("/clips/{clipId}/source", clipSourceHandler(cfg, sources))
				r.Head("/clips/{clipId}/source", clipSourceHandler(cfg, sources))
			})
		})
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		}
		if cfg.Editor != nil {
			resp.OpenProjects = cfg.Editor.OpenCount()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Editor.List(r.Context())
		if err != nil {
			cfg.Logger.Error("failed to list projects", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if !decodeBody(w, r, &req, true) {
			return
		}

		snap, err := cfg.Editor.Create(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusCreated, snap)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cfg.Editor.Snapshot(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func renameProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenameProjectRequest
		if !decodeBody(w, r, &req, false) {
			return
		}

		id := chi.URLParam(r, "id")
		if err := cfg.Editor.Rename(r.Context(), id, req.Name); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		snap, err := cfg.Editor.Snapshot(r.Context(), id)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Editor.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dispatchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ActionRequest
		if !decodeBody(w, r, &req, false) {
			return
		}

		action, err := DecodeAction(req)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		snap, err := cfg.Editor.Dispatch(r.Context(), chi.URLParam(r, "id"), action)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func historyHandler(cfg ServerConfig, op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var (
			snap    editor.Snapshot
			applied bool
			err     error
		)
		if op == "undo" {
			snap, applied, err = cfg.Editor.Undo(r.Context(), id)
		} else {
			snap, applied, err = cfg.Editor.Redo(r.Context(), id)
		}
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, HistoryResponse{Applied: applied, Project: snap})
	}
}

func getDocumentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := editor.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		doc, err := cfg.Editor.Document(r.Context(), chi.URLParam(r, "id"), format)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		if format == editor.FormatYAML {
			w.Header().Set("Content-Type", "application/yaml")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(http.StatusOK)
		w.Write(doc)
	}
}

func putDocumentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formatParam := r.URL.Query().Get("format")
		if formatParam == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
			formatParam = "yaml"
		}
		format, err := editor.ParseFormat(formatParam)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, "document too large", "BAD_REQUEST")
			return
		}

		snap, err := cfg.Editor.Import(r.Context(), chi.URLParam(r, "id"), data, format)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func saveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cfg.Editor.Save(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func closeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Editor.Close(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if !decodeBody(w, r, &req, true) {
			return
		}

		resp, err := cfg.Editor.Export(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func clipSourceHandler(cfg ServerConfig, sources *media.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := cfg.Editor.ClipSource(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "clipId"))
		if err != nil {
			writeServiceError(w, cfg, err)
			return
		}

		path, err := media.LocalPath(src)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, "clip source is not a local file", "REMOTE_SOURCE")
			return
		}
		if err := sources.Serve(w, r, path); err != nil {
			writeServiceError(w, cfg, err)
		}
	}
}

// decodeBody reads and validates a JSON request body, writing a 400 and
// returning false on failure. An empty body is accepted when allowEmpty is
// set.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, validationMessage(err), "BAD_REQUEST")
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, cfg ServerConfig, err error) {
	switch {
	case errors.Is(err, editor.ErrProjectNotFound):
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
	case errors.Is(err, export.ErrTrackNotFound), errors.Is(err, editor.ErrClipNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, editor.ErrNoSource), errors.Is(err, media.ErrSourceMissing):
		WriteError(w, http.StatusNotFound, err.Error(), "SOURCE_NOT_FOUND")
	case errors.Is(err, editor.ErrInvalidInput), errors.Is(err, editor.ErrEmptyDocument):
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
	case errors.Is(err, export.ErrNoMediaClips):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_EXPORTABLE_CLIPS")
	default:
		cfg.Logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
