package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/db"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/export"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/store"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

func setupService(t *testing.T, opts ...Option) (*Service, store.Repository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "editor.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	repo := store.NewRepository(database.Conn())
	return NewService(repo, nil, opts...), repo
}

func addVideoTrack(t *testing.T, svc *Service, id string) {
	t.Helper()
	_, err := svc.Dispatch(context.Background(), id, timeline.AddTrack{
		Track: timeline.Track{ID: "v1", Kind: timeline.TrackVideo, Label: "Video 1"},
	})
	require.NoError(t, err)
}

func addClip(t *testing.T, svc *Service, id, clipID string, start, end float64) Snapshot {
	t.Helper()
	src := "/media/" + clipID + ".mp4"
	snap, err := svc.Dispatch(context.Background(), id, timeline.AddClip{
		TrackID: "v1",
		Clip:    timeline.Clip{ID: clipID, Kind: timeline.ClipVideo, Start: start, End: end, Name: clipID, Src: &src},
	})
	require.NoError(t, err)
	return snap
}

func TestService_CreateOpensEmptyProject(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	snap, err := svc.Create(ctx, "  Teaser ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(snap.ProjectID, timeline.ProjectIDPrefix+"-"))
	assert.Equal(t, "Teaser", snap.Name)
	assert.Empty(t, snap.State.Tracks)
	assert.False(t, snap.CanUndo)
	assert.False(t, snap.Dirty)
	assert.Equal(t, 1, svc.OpenCount())

	stored, err := repo.GetProject(ctx, snap.ProjectID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Contains(t, string(stored.Document), `"version": 1`)

	untitled, err := svc.Create(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", untitled.Name)
}

func TestService_DispatchUndoRedo(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Edit")
	require.NoError(t, err)
	id := snap.ProjectID

	addVideoTrack(t, svc, id)
	snap = addClip(t, svc, id, "c1", 0, 4)
	assert.Equal(t, 4.0, snap.State.Duration)
	assert.True(t, snap.CanUndo)
	assert.True(t, snap.Dirty)

	snap, err = svc.Dispatch(ctx, id, timeline.SetPlayhead{Time: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.UndoDepth, "view actions must not record history")

	snap, applied, err := svc.Undo(ctx, id)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Empty(t, snap.State.Tracks[0].Clips)
	assert.Equal(t, 2.0, snap.State.PlayheadTime)
	assert.True(t, snap.CanRedo)

	snap, applied, err = svc.Redo(ctx, id)
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, snap.State.Tracks[0].Clips, 1)
	assert.Equal(t, "c1", snap.State.Tracks[0].Clips[0].ID)

	_, applied, err = svc.Redo(ctx, id)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestService_HistoryDepthOption(t *testing.T) {
	svc, _ := setupService(t, WithHistoryDepth(3))
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Shallow")
	require.NoError(t, err)

	addVideoTrack(t, svc, snap.ProjectID)
	for i := 0; i < 5; i++ {
		snap = addClip(t, svc, snap.ProjectID, "c"+string(rune('a'+i)), float64(i), float64(i)+1)
	}
	assert.Equal(t, 3, snap.UndoDepth)
}

func TestService_SaveAndReopen(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Persist")
	require.NoError(t, err)
	id := snap.ProjectID

	addVideoTrack(t, svc, id)
	addClip(t, svc, id, "c1", 0, 3)
	addClip(t, svc, id, "c2", 3, 7.5)

	snap, err = svc.Save(ctx, id)
	require.NoError(t, err)
	assert.False(t, snap.Dirty)

	stored, err := repo.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.ClipCount)
	assert.Equal(t, 7.5, stored.DurationS)

	require.True(t, svc.Close(id))
	assert.False(t, svc.Close(id))
	assert.Equal(t, 0, svc.OpenCount())

	reopened, err := svc.Open(ctx, id)
	require.NoError(t, err)
	require.Len(t, reopened.State.Tracks, 1)
	assert.Equal(t, []string{"c1", "c2"}, []string{reopened.State.Tracks[0].Clips[0].ID, reopened.State.Tracks[0].Clips[1].ID})
	assert.Equal(t, 7.5, reopened.State.Duration)
	assert.False(t, reopened.CanUndo, "history is not persisted")
}

func TestService_OpenMissingProject(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Open(ctx, "project-missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = svc.Dispatch(ctx, "project-missing", timeline.ToggleSnap{})
	assert.ErrorIs(t, err, ErrProjectNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "project-missing"), ErrProjectNotFound)
	assert.ErrorIs(t, svc.Rename(ctx, "project-missing", "x"), ErrProjectNotFound)
}

func TestService_DocumentAndImport(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	src, err := svc.Create(ctx, "Source")
	require.NoError(t, err)
	addVideoTrack(t, svc, src.ProjectID)
	addClip(t, svc, src.ProjectID, "c1", 1, 2)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			doc, err := svc.Document(ctx, src.ProjectID, format)
			require.NoError(t, err)

			dst, err := svc.Create(ctx, "Target")
			require.NoError(t, err)
			addVideoTrack(t, svc, dst.ProjectID)

			snap, err := svc.Import(ctx, dst.ProjectID, doc, format)
			require.NoError(t, err)
			require.Len(t, snap.State.Tracks, 1)
			require.Len(t, snap.State.Tracks[0].Clips, 1)
			assert.Equal(t, "c1", snap.State.Tracks[0].Clips[0].ID)
			assert.False(t, snap.CanUndo, "import starts a fresh history")
			assert.True(t, snap.Dirty)
		})
	}
}

func TestService_ImportRejectsGarbage(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Target")
	require.NoError(t, err)

	_, err = svc.Import(ctx, snap.ProjectID, []byte("{not json"), FormatJSON)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = svc.Import(ctx, snap.ProjectID, []byte(`{"version":1}`), FormatJSON)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestService_RenameUpdatesOpenSession(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Before")
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, snap.ProjectID, "After"))
	snap, err = svc.Snapshot(ctx, snap.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "After", snap.Name)

	assert.ErrorIs(t, svc.Rename(ctx, snap.ProjectID, "  "), ErrInvalidInput)
}

func TestService_DeleteAndList(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, "A")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "B")
	require.NoError(t, err)

	projects, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	require.NoError(t, svc.Delete(ctx, a.ProjectID))
	assert.Equal(t, 1, svc.OpenCount())

	projects, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "B", projects[0].Name)
}

func TestService_Export(t *testing.T) {
	outDir := t.TempDir()
	svc, _ := setupService(t, WithExportDir(outDir))
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Cut <v2>")
	require.NoError(t, err)
	addVideoTrack(t, svc, snap.ProjectID)
	addClip(t, svc, snap.ProjectID, "c1", 0, 2)

	resp, err := svc.Export(ctx, snap.ProjectID, export.ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.ClipCount)
	assert.Empty(t, resp.UnresolvedClips)
	assert.Equal(t, filepath.Join(outDir, "Cut _v2_.edl"), resp.OutputPath)

	data, err := os.ReadFile(resp.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TITLE: Cut _v2_")
	assert.Contains(t, string(data), "* MEDIA PATH:  /media/c1.mp4")
}

func TestService_ExportErrors(t *testing.T) {
	svc, _ := setupService(t, WithExportDir(t.TempDir()))
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Empty")
	require.NoError(t, err)

	_, err = svc.Export(ctx, snap.ProjectID, export.ExportRequest{})
	assert.ErrorIs(t, err, export.ErrTrackNotFound)

	_, err = svc.Export(ctx, snap.ProjectID, export.ExportRequest{Format: "xml"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Export(ctx, snap.ProjectID, export.ExportRequest{OutputDir: "relative/../escape"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	addVideoTrack(t, svc, snap.ProjectID)
	_, err = svc.Export(ctx, snap.ProjectID, export.ExportRequest{TrackID: "v1"})
	assert.ErrorIs(t, err, export.ErrNoMediaClips)
}

func TestService_ConcurrentDispatch(t *testing.T) {
	svc, _ := setupService(t, WithHistoryDepth(500))
	ctx := context.Background()
	snap, err := svc.Create(ctx, "Busy")
	require.NoError(t, err)
	addVideoTrack(t, svc, snap.ProjectID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Dispatch(ctx, snap.ProjectID, timeline.AddClip{
				TrackID: "v1",
				Clip:    timeline.Clip{Kind: timeline.ClipVideo, Start: float64(i), End: float64(i) + 1},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap, err = svc.Snapshot(ctx, snap.ProjectID)
	require.NoError(t, err)
	assert.Len(t, snap.State.Tracks[0].Clips, 20)
	assert.NoError(t, timeline.Validate(snap.State))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yaml": FormatYAML, " yml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_SaveAll(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	clean, err := svc.Create(ctx, "Clean")
	require.NoError(t, err)
	dirty, err := svc.Create(ctx, "Dirty")
	require.NoError(t, err)
	addVideoTrack(t, svc, dirty.ProjectID)
	addClip(t, svc, dirty.ProjectID, "c1", 0, 5)

	saved, err := svc.SaveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	stored, err := repo.GetProject(ctx, dirty.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ClipCount)

	snap, err := svc.Snapshot(ctx, clean.ProjectID)
	require.NoError(t, err)
	assert.False(t, snap.Dirty)

	saved, err = svc.SaveAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, saved)
}

func TestService_SaveAllPersistsNonUndoableDocumentChanges(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	snap, err := svc.Create(ctx, "Vertical")
	require.NoError(t, err)

	snap, err = svc.Dispatch(ctx, snap.ProjectID, timeline.SetPlayhead{Time: 4})
	require.NoError(t, err)
	assert.False(t, snap.Dirty, "playhead is not part of the saved document")

	snap, err = svc.Dispatch(ctx, snap.ProjectID, timeline.SetAspectRatio{Ratio: timeline.Ratio9x16})
	require.NoError(t, err)
	assert.True(t, snap.Dirty)

	saved, err := svc.SaveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	reopened, err := NewService(repo, nil).Open(ctx, snap.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, timeline.Ratio9x16, reopened.State.AspectRatio)
	assert.Equal(t, 1080, reopened.State.Width)
	assert.Equal(t, 1920, reopened.State.Height)

	tracks := []timeline.Track{{ID: "v1", Kind: timeline.TrackVideo, Clips: []timeline.Clip{
		{ID: "c1", Kind: timeline.ClipVideo, Start: 0, End: 3},
	}}}
	snap, err = svc.Dispatch(ctx, snap.ProjectID, timeline.LoadProject{Patch: timeline.Patch{Tracks: &tracks}})
	require.NoError(t, err)
	assert.True(t, snap.Dirty)

	saved, err = svc.SaveAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	stored, err := repo.GetProject(ctx, snap.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ClipCount)
}

func TestService_ClipSource(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	snap, err := svc.Create(ctx, "Sources")
	require.NoError(t, err)
	addVideoTrack(t, svc, snap.ProjectID)
	addClip(t, svc, snap.ProjectID, "c1", 0, 5)
	_, err = svc.Dispatch(ctx, snap.ProjectID, timeline.AddClip{
		TrackID: "v1",
		Clip:    timeline.Clip{ID: "bare", Kind: timeline.ClipImage, Start: 5, End: 6},
	})
	require.NoError(t, err)

	src, err := svc.ClipSource(ctx, snap.ProjectID, "c1")
	require.NoError(t, err)
	assert.Equal(t, "/media/c1.mp4", src)

	_, err = svc.ClipSource(ctx, snap.ProjectID, "bare")
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = svc.ClipSource(ctx, snap.ProjectID, "ghost")
	assert.ErrorIs(t, err, ErrClipNotFound)

	_, err = svc.ClipSource(ctx, "project-missing", "c1")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
