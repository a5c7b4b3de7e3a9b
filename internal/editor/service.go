// Package editor keeps open projects in memory, each behind its own history
// engine, and moves them between the store and the interchange format.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/export"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/history"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/logging"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/project"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/store"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyDocument   = errors.New("document has no tracks")
	ErrInvalidInput    = errors.New("invalid input")
	ErrClipNotFound    = errors.New("clip not found")
	ErrNoSource        = errors.New("clip has no source media")
)

// Format selects the interchange encoding for Document and Import.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps "", "json", "yaml" and "yml" (any case) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", ErrInvalidInput, s)
}

// Snapshot is a point-in-time view of an open project.
type Snapshot struct {
	ProjectID string         `json:"project_id"`
	Name      string         `json:"name"`
	State     timeline.State `json:"state"`
	CanUndo   bool           `json:"can_undo"`
	CanRedo   bool           `json:"can_redo"`
	UndoDepth int            `json:"undo_depth"`
	RedoDepth int            `json:"redo_depth"`
	Dirty     bool           `json:"dirty"`
}

type session struct {
	mu     sync.Mutex
	id     string
	name   string
	engine *history.Engine
	dirty  bool
}

// snapshot must be called with s.mu held.
func (s *session) snapshot() Snapshot {
	return Snapshot{
		ProjectID: s.id,
		Name:      s.name,
		State:     s.engine.State(),
		CanUndo:   s.engine.CanUndo(),
		CanRedo:   s.engine.CanRedo(),
		UndoDepth: s.engine.UndoDepth(),
		RedoDepth: s.engine.RedoDepth(),
		Dirty:     s.dirty,
	}
}

type Service struct {
	repo      store.Repository
	logger    *slog.Logger
	depth     int
	exportDir string

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*Service)

// WithHistoryDepth bounds the undo and redo stacks of every session.
func WithHistoryDepth(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.depth = n
		}
	}
}

// WithExportDir sets the directory used when an export request names none.
func WithExportDir(dir string) Option {
	return func(s *Service) { s.exportDir = dir }
}

func NewService(repo store.Repository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		repo:     repo,
		logger:   logging.WithComponent(logger, "editor"),
		depth:    history.DefaultDepth,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists an empty project and opens it.
func (s *Service) Create(ctx context.Context, name string) (Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}

	state := timeline.DefaultState()
	doc, err := project.Encode(state)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode project: %w", err)
	}

	now := time.Now().UTC()
	p := &store.Project{
		ID:        timeline.NewID(timeline.ProjectIDPrefix),
		Name:      name,
		Document:  doc,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return Snapshot{}, fmt.Errorf("create project: %w", err)
	}

	sess := s.register(p.ID, p.Name, state)
	s.logger.Info("project created", "project_id", p.ID, "name", p.Name)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Open loads a project into memory. Opening an already open project returns
// its live session unchanged.
func (s *Service) Open(ctx context.Context, id string) (Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

func (s *Service) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	return s.Open(ctx, id)
}

// Dispatch applies a through the session's history engine.
func (s *Service) Dispatch(ctx context.Context, id string, a timeline.Action) (Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	undoable := history.Undoable(a)
	before := sess.engine.State()
	after := sess.engine.Dispatch(a)
	if undoable || documentChanged(before, after) {
		sess.dirty = true
	}
	recordAction(string(a.Type()), undoable)
	logging.WithProjectID(s.logger, id).Debug("action dispatched", "type", a.Type(), "undoable", undoable)

	return sess.snapshot(), nil
}

// documentChanged reports whether the saved form of the project differs.
// Non-undoable actions such as SET_ASPECT_RATIO and LOAD_PROJECT still
// change it.
func documentChanged(before, after timeline.State) bool {
	return !reflect.DeepEqual(project.ToInterchange(before), project.ToInterchange(after))
}

// Undo reports false in the second result when there was nothing to undo.
func (s *Service) Undo(ctx context.Context, id string) (Snapshot, bool, error) {
	return s.step(ctx, id, "undo")
}

func (s *Service) Redo(ctx context.Context, id string) (Snapshot, bool, error) {
	return s.step(ctx, id, "redo")
}

func (s *Service) step(ctx context.Context, id, op string) (Snapshot, bool, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return Snapshot{}, false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	var applied bool
	if op == "undo" {
		applied = sess.engine.Undo()
	} else {
		applied = sess.engine.Redo()
	}
	if applied {
		sess.dirty = true
	}
	recordHistoryOp(op, applied)

	return sess.snapshot(), applied, nil
}

// Document encodes the current state of a project.
func (s *Service) Document(ctx context.Context, id string, format Format) ([]byte, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	state := sess.engine.State()
	sess.mu.Unlock()

	if format == FormatYAML {
		return project.EncodeYAML(state)
	}
	return project.Encode(state)
}

// Import replaces a project's timeline with a decoded document and forgets
// its history. Documents that decode to nothing are rejected.
func (s *Service) Import(ctx context.Context, id string, data []byte, format Format) (Snapshot, error) {
	var patch timeline.Patch
	if format == FormatYAML {
		patch = project.DecodeYAML(data)
	} else {
		patch = project.Decode(data)
	}
	if patch.Empty() {
		return Snapshot{}, ErrEmptyDocument
	}

	sess, err := s.session(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := timeline.Reduce(sess.engine.State(), timeline.LoadProject{Patch: patch})
	sess.engine.Reset(next)
	sess.dirty = true
	recordAction(string(timeline.ActionLoadProject), false)
	logging.WithProjectID(s.logger, id).Info("document imported", "tracks", len(next.Tracks), "clips", next.ClipCount())

	return sess.snapshot(), nil
}

// Save writes the current state back to the store.
func (s *Service) Save(ctx context.Context, id string) (Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.engine.State()
	doc, err := project.Encode(state)
	if err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return Snapshot{}, fmt.Errorf("encode project: %w", err)
	}

	if err := s.repo.UpdateProjectDocument(ctx, id, doc, state.ClipCount(), state.Duration); err != nil {
		savesTotal.WithLabelValues("error").Inc()
		if errors.Is(err, store.ErrNotFound) {
			return Snapshot{}, fmt.Errorf("save %s: %w", id, ErrProjectNotFound)
		}
		return Snapshot{}, fmt.Errorf("save project: %w", err)
	}

	sess.dirty = false
	savesTotal.WithLabelValues("ok").Inc()
	documentBytes.Observe(float64(len(doc)))
	logging.WithProjectID(s.logger, id).Info("project saved", "bytes", len(doc), "clips", state.ClipCount())

	return sess.snapshot(), nil
}

// Close drops a session without saving. It reports whether one was open.
func (s *Service) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	openSessions.Dec()
	return true
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return fmt.Errorf("delete %s: %w", id, ErrProjectNotFound)
	}

	s.Close(id)
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func (s *Service) List(ctx context.Context) ([]*store.Project, error) {
	return s.repo.ListProjects(ctx, 0)
}

func (s *Service) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.repo.RenameProject(ctx, id, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("rename %s: %w", id, ErrProjectNotFound)
		}
		return fmt.Errorf("rename project: %w", err)
	}

	s.mu.Lock()
	sess := s.sessions[id]
	s.mu.Unlock()
	if sess != nil {
		sess.mu.Lock()
		sess.name = name
		sess.mu.Unlock()
	}
	return nil
}

// Export writes one track of a project as an EDL file. An empty track id
// picks the first video track; an empty output dir uses the service default.
func (s *Service) Export(ctx context.Context, id string, req export.ExportRequest) (*export.ExportResponse, error) {
	if req.Format != "" && !strings.EqualFold(req.Format, "edl") {
		return nil, fmt.Errorf("%w: format must be edl", ErrInvalidInput)
	}
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.exportDir
	}
	if err := export.ValidateOutputDir(outputDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	state := sess.engine.State()
	title := sess.name
	sess.mu.Unlock()

	if req.Title != "" {
		title = req.Title
	}
	trackID := req.TrackID
	if trackID == "" {
		var ok bool
		if trackID, ok = export.DefaultTrack(state); !ok {
			return nil, export.ErrTrackNotFound
		}
	}

	clips, unresolved, err := export.FromTrack(state, trackID)
	if err != nil {
		return nil, err
	}

	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = float64(state.FPS)
	}

	name := export.SanitizeName(title, 120)
	if name == "" {
		name = export.DefaultTitle
	}
	path, err := export.WriteEDL(outputDir, name, export.GenerateEDL(clips, name, frameRate))
	if err != nil {
		return nil, err
	}
	logging.WithProjectID(s.logger, id).Info("project exported",
		"path", logging.SanitizePath(path), "clips", len(clips), "unresolved", len(unresolved))

	return &export.ExportResponse{
		Status:          "ok",
		Format:          "edl",
		OutputPath:      path,
		ClipCount:       len(clips),
		UnresolvedClips: unresolved,
	}, nil
}

// ClipSource returns the source reference of clipID, searching every track.
func (s *Service) ClipSource(ctx context.Context, id, clipID string) (string, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	state := sess.engine.State()
	sess.mu.Unlock()

	for _, t := range state.Tracks {
		for _, c := range t.Clips {
			if c.ID != clipID {
				continue
			}
			if c.Src == nil || *c.Src == "" {
				return "", fmt.Errorf("clip %s: %w", clipID, ErrNoSource)
			}
			return *c.Src, nil
		}
	}
	return "", fmt.Errorf("clip %s: %w", clipID, ErrClipNotFound)
}

// session returns the open session for id, loading it from the store on
// first use.
func (s *Service) session(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("open %s: %w", id, ErrProjectNotFound)
	}

	state := timeline.Reduce(timeline.DefaultState(), timeline.LoadProject{Patch: project.Decode(p.Document)})
	s.logger.Debug("project opened", "project_id", id, "tracks", len(state.Tracks))
	return s.register(p.ID, p.Name, state), nil
}

// register stores a new session unless a concurrent open won the race, in
// which case the existing one is returned.
func (s *Service) register(id, name string, state timeline.State) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[id]; ok {
		return existing
	}
	sess := &session{
		id:     id,
		name:   name,
		engine: history.New(state, history.WithDepth(s.depth)),
	}
	s.sessions[id] = sess
	openSessions.Inc()
	return sess
}

// SaveAll saves every open session with unsaved changes and returns how
// many were written. It keeps going past failures and joins their errors.
func (s *Service) SaveAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	var dirty []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.dirty {
			dirty = append(dirty, id)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	var errs []error
	saved := 0
	for _, id := range dirty {
		if _, err := s.Save(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// OpenCount returns the number of sessions held in memory.
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
