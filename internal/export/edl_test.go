package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

func TestGenerateEDL_SingleClip(t *testing.T) {
	clips := []ResolvedClip{{
		ClipName:    "Intro",
		MediaPath:   "/media/intro.mp4",
		SourceInMs:  0,
		SourceOutMs: 2000,
		RecordInMs:  0,
		RecordOutMs: 2000,
	}}

	edl := GenerateEDL(clips, "Project One", 30.0)

	if !strings.Contains(edl, "TITLE: Project One") {
		t.Fatalf("missing title in EDL: %q", edl)
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Fatalf("missing non-drop-frame FCM: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00") {
		t.Fatalf("missing event line: %q", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  Intro") {
		t.Fatalf("missing clip name comment: %q", edl)
	}
	if !strings.Contains(edl, "* MEDIA PATH:  /media/intro.mp4") {
		t.Fatalf("missing media path comment: %q", edl)
	}
}

func TestGenerateEDL_RecordTimesFollowTimeline(t *testing.T) {
	clips := []ResolvedClip{
		{ClipName: "Clip A", MediaPath: "/a.mp4", SourceInMs: 500, SourceOutMs: 1500, RecordInMs: 0, RecordOutMs: 1000},
		{ClipName: "Clip B", Channel: "A", SourceInMs: 0, SourceOutMs: 1500, RecordInMs: 4000, RecordOutMs: 5500},
	}

	edl := GenerateEDL(clips, "Multi", 30.0)

	if !strings.Contains(edl, "001  AX       V     C        00:00:00:15 00:00:01:15 00:00:00:00 00:00:01:00") {
		t.Fatalf("first event line mismatch: %q", edl)
	}
	if !strings.Contains(edl, "002  AX       A     C        00:00:00:00 00:00:01:15 00:00:04:00 00:00:05:15") {
		t.Fatalf("second event line mismatch: %q", edl)
	}
	if strings.Count(edl, "* MEDIA PATH:") != 1 {
		t.Fatalf("media path should only be written when known: %q", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	clips := []ResolvedClip{{ClipName: "Clip", MediaPath: "/x.mp4", SourceOutMs: 1000, RecordOutMs: 1000}}
	edl := GenerateEDL(clips, "Drop", 29.97)

	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestMsToTimecode(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		fps  int
		want string
	}{
		{name: "zero", ms: 0, fps: 30, want: "00:00:00:00"},
		{name: "negative", ms: -40, fps: 30, want: "00:00:00:00"},
		{name: "one second", ms: 1000, fps: 30, want: "00:00:01:00"},
		{name: "fractional second", ms: 500, fps: 30, want: "00:00:00:15"},
		{name: "one minute", ms: 60000, fps: 30, want: "00:01:00:00"},
		{name: "one hour", ms: 3600000, fps: 30, want: "01:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := msToTimecode(tc.ms, tc.fps)
			if got != tc.want {
				t.Fatalf("msToTimecode(%d, %d) = %q, want %q", tc.ms, tc.fps, got, tc.want)
			}
		})
	}
}

func exportState() timeline.State {
	src := "/media/a.mp4"
	speed := 2.0
	tracks := []timeline.Track{
		{ID: "titles", Kind: timeline.TrackText, Clips: []timeline.Clip{
			{ID: "t1", Kind: timeline.ClipText, Start: 0, End: 2, Name: "Title"},
		}},
		{ID: "main", Kind: timeline.TrackVideo, Clips: []timeline.Clip{
			{ID: "c2", Kind: timeline.ClipVideo, Start: 3, End: 5, TrimStart: 10, Name: "Fast", Src: &src, Speed: &speed},
			{ID: "c1", Kind: timeline.ClipVideo, Start: 0, End: 3, TrimStart: 1, Name: "Open/ing", Src: &src},
			{ID: "c3", Kind: timeline.ClipImage, Start: 5, End: 6, TrimStart: 4, Name: ""},
		}},
	}
	return timeline.Reduce(timeline.DefaultState(), timeline.LoadProject{Patch: timeline.Patch{Tracks: &tracks}})
}

func TestDefaultTrack(t *testing.T) {
	id, ok := DefaultTrack(exportState())
	if !ok || id != "main" {
		t.Fatalf("DefaultTrack() = %q, %v; want main", id, ok)
	}
	if _, ok := DefaultTrack(timeline.DefaultState()); ok {
		t.Fatal("DefaultTrack() on empty state should report false")
	}
}

func TestFromTrack(t *testing.T) {
	clips, unresolved, err := FromTrack(exportState(), "main")
	if err != nil {
		t.Fatalf("FromTrack() error = %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("FromTrack() returned %d clips, want 3", len(clips))
	}

	first := clips[0]
	if first.ClipID != "c1" || first.ClipName != "Open_ing" {
		t.Errorf("first clip = %+v", first)
	}
	if first.SourceInMs != 1000 || first.SourceOutMs != 4000 || first.RecordInMs != 0 || first.RecordOutMs != 3000 {
		t.Errorf("first clip times = %+v", first)
	}

	fast := clips[1]
	if fast.SourceInMs != 10000 || fast.SourceOutMs != 14000 {
		t.Errorf("speed should scale source span, got %+v", fast)
	}

	still := clips[2]
	if still.ClipName != "c3" || still.SourceInMs != 0 || still.SourceOutMs != 1000 {
		t.Errorf("image clip = %+v", still)
	}
	if len(unresolved) != 1 || unresolved[0] != "c3" {
		t.Errorf("unresolved = %v, want [c3]", unresolved)
	}
}

func TestFromTrack_Errors(t *testing.T) {
	s := exportState()
	if _, _, err := FromTrack(s, "ghost"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("FromTrack(ghost) error = %v, want ErrTrackNotFound", err)
	}
	if _, _, err := FromTrack(s, "titles"); !errors.Is(err, ErrNoMediaClips) {
		t.Errorf("FromTrack(titles) error = %v, want ErrNoMediaClips", err)
	}
}
