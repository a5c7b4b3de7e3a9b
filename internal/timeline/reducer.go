package timeline

import "math"

// Reduce applies a to s and returns the resulting state. It never mutates s:
// any track or clip list that changes is copied first, so earlier states stay
// valid for diffing or history. Actions that reference unknown tracks or
// clips, and unknown action types, return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetPlayhead:
		s.PlayheadTime = nonNegative(a.Time)
		return s
	case SetPlaying:
		s.IsPlaying = a.Playing
		return s
	case SelectClip:
		s.Selection = Selection{}
		if a.ClipID == "" || a.TrackID == "" {
			return s
		}
		if _, ci, ok := s.FindClip(a.TrackID, a.ClipID); ok && ci >= 0 {
			s.Selection = Selection{ClipID: a.ClipID, TrackID: a.TrackID}
		}
		return s
	case AddClip:
		return addClip(s, a)
	case RemoveClip:
		return removeClip(s, a.TrackID, a.ClipID, false)
	case MoveClip:
		return moveClip(s, a)
	case TrimClip:
		return trimClip(s, a)
	case AddTrack:
		return addTrack(s, a.Track)
	case RemoveTrack:
		return removeTrack(s, a.TrackID)
	case ToggleTrackMute:
		return updateTrack(s, a.TrackID, func(t Track) Track {
			t.Muted = !t.Muted
			return t
		})
	case ToggleTrackLock:
		return updateTrack(s, a.TrackID, func(t Track) Track {
			t.Locked = !t.Locked
			return t
		})
	case SetZoom:
		if !math.IsNaN(a.Zoom) {
			s.Zoom = clamp(a.Zoom, MinZoom, MaxZoom)
		}
		return s
	case SetScrollX:
		s.ScrollX = nonNegative(a.X)
		return s
	case LoadProject:
		return loadProject(s, a.Patch)
	case UpdateClip:
		return updateClip(s, a)
	case ReorderClip:
		return reorderClip(s, a)
	case RippleDelete:
		return removeClip(s, a.TrackID, a.ClipID, true)
	case ClearTimeline:
		return clearTimeline(s)
	case MoveTrack:
		return moveTrack(s, a)
	case SetLoop:
		s.IsLooping = a.Looping
		return s
	case SetAspectRatio:
		ratio := a.Ratio
		if !ratio.Valid() {
			ratio = Ratio16x9
		}
		s.AspectRatio = ratio
		s.Width, s.Height = Dimensions(ratio)
		return s
	case ToggleSnap:
		s.SnapEnabled = !s.SnapEnabled
		return s
	case SelectAllClips:
		for _, t := range s.Tracks {
			if len(t.Clips) > 0 {
				s.Selection = Selection{ClipID: t.Clips[0].ID, TrackID: t.ID}
				return s
			}
		}
		return s
	}
	return s
}

func addClip(s State, a AddClip) State {
	ti := s.trackIndex(a.TrackID)
	if ti < 0 {
		return s
	}
	clip := a.Clip.Clone()
	if clip.ID == "" {
		clip.ID = NewID(ClipIDPrefix)
	}
	normalizeClip(&clip)

	s = withTrack(s, ti, func(t Track) Track {
		clips := make([]Clip, 0, len(t.Clips)+1)
		clips = append(clips, t.Clips...)
		clips = append(clips, clip)
		sortClips(clips)
		t.Clips = clips
		return t
	})
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

// removeClip drops a clip from its track. With ripple set, every clip that
// starts at or after the removed one moves left by its duration, stopping at
// zero.
func removeClip(s State, trackID, clipID string, ripple bool) State {
	ti, ci, ok := s.FindClip(trackID, clipID)
	if !ok || ci < 0 {
		return s
	}
	removed := s.Tracks[ti].Clips[ci]
	gap := removed.Duration()

	s = withTrack(s, ti, func(t Track) Track {
		clips := make([]Clip, 0, len(t.Clips)-1)
		for i, c := range t.Clips {
			if i == ci {
				continue
			}
			if ripple && c.Start >= removed.Start {
				d := c.Duration()
				c.Start = nonNegative(c.Start - gap)
				c.End = c.Start + d
			}
			clips = append(clips, c)
		}
		sortClips(clips)
		t.Clips = clips
		return t
	})
	if s.Selection.ClipID == clipID {
		s.Selection = Selection{}
	}
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

// moveClip re-places a clip, possibly onto another track. The new start is
// clamped to zero; the clip keeps its duration.
func moveClip(s State, a MoveClip) State {
	fi, ci, ok := s.FindClip(a.FromTrackID, a.ClipID)
	if !ok || ci < 0 {
		return s
	}
	ti := s.trackIndex(a.ToTrackID)
	if ti < 0 {
		return s
	}

	clip := s.Tracks[fi].Clips[ci]
	dur := clip.Duration()
	clip.Start = nonNegative(a.NewStart)
	clip.End = clip.Start + dur

	s = withTrack(s, fi, func(t Track) Track {
		clips := make([]Clip, 0, len(t.Clips))
		clips = append(clips, t.Clips[:ci]...)
		clips = append(clips, t.Clips[ci+1:]...)
		t.Clips = clips
		return t
	})
	s = withTrack(s, ti, func(t Track) Track {
		clips := make([]Clip, 0, len(t.Clips)+1)
		clips = append(clips, t.Clips...)
		clips = append(clips, clip)
		sortClips(clips)
		t.Clips = clips
		return t
	})
	if s.Selection.ClipID == a.ClipID {
		s.Selection.TrackID = a.ToTrackID
	}
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

// trimClip moves one edge of a clip. The clip never gets shorter than
// MinClipDuration. Trim offsets into the source shift by the same amount as
// the edge, so the source frame under the edge stays put.
func trimClip(s State, a TrimClip) State {
	ti, ci, ok := s.FindClip(a.TrackID, a.ClipID)
	if !ok || ci < 0 {
		return s
	}
	if (a.Edge != EdgeStart && a.Edge != EdgeEnd) || math.IsNaN(a.NewTime) {
		return s
	}

	s = withTrack(s, ti, func(t Track) Track {
		clips := append([]Clip(nil), t.Clips...)
		c := clips[ci]
		switch a.Edge {
		case EdgeStart:
			newStart := clamp(a.NewTime, 0, c.End-MinClipDuration)
			c.TrimStart += newStart - c.Start
			c.Start = newStart
		case EdgeEnd:
			newEnd := math.Max(c.Start+MinClipDuration, a.NewTime)
			c.TrimEnd += newEnd - c.End
			c.End = newEnd
		}
		clips[ci] = c
		sortClips(clips)
		t.Clips = clips
		return t
	})
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

func addTrack(s State, t Track) State {
	t = t.Clone()
	if t.ID == "" {
		t.ID = NewID(TrackIDPrefix)
	}
	for i := range t.Clips {
		normalizeClip(&t.Clips[i])
	}
	sortClips(t.Clips)

	tracks := make([]Track, 0, len(s.Tracks)+1)
	tracks = append(tracks, s.Tracks...)
	s.Tracks = append(tracks, t)
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

func removeTrack(s State, trackID string) State {
	ti := s.trackIndex(trackID)
	if ti < 0 {
		return s
	}
	tracks := make([]Track, 0, len(s.Tracks)-1)
	tracks = append(tracks, s.Tracks[:ti]...)
	s.Tracks = append(tracks, s.Tracks[ti+1:]...)
	if s.Selection.TrackID == trackID {
		s.Selection = Selection{}
	}
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

func updateTrack(s State, trackID string, fn func(Track) Track) State {
	ti := s.trackIndex(trackID)
	if ti < 0 {
		return s
	}
	return withTrack(s, ti, fn)
}

func updateClip(s State, a UpdateClip) State {
	ti, ci, ok := s.FindClip(a.TrackID, a.ClipID)
	if !ok || ci < 0 {
		return s
	}

	s = withTrack(s, ti, func(t Track) Track {
		clips := append([]Clip(nil), t.Clips...)
		c := a.Updates.apply(clips[ci])
		normalizeClip(&c)
		clips[ci] = c
		sortClips(clips)
		t.Clips = clips
		return t
	})
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

// reorderClip moves a clip to a new index and then packs the whole track
// back to back from zero in list order, keeping each clip's duration.
func reorderClip(s State, a ReorderClip) State {
	ti, ci, ok := s.FindClip(a.TrackID, a.ClipID)
	if !ok || ci < 0 {
		return s
	}

	s = withTrack(s, ti, func(t Track) Track {
		n := len(t.Clips)
		idx := a.NewIndex
		if idx < 0 {
			idx = 0
		}
		if idx > n-1 {
			idx = n - 1
		}

		moved := t.Clips[ci]
		rest := make([]Clip, 0, n-1)
		rest = append(rest, t.Clips[:ci]...)
		rest = append(rest, t.Clips[ci+1:]...)

		clips := make([]Clip, 0, n)
		clips = append(clips, rest[:idx]...)
		clips = append(clips, moved)
		clips = append(clips, rest[idx:]...)

		cursor := 0.0
		for i := range clips {
			d := clips[i].Duration()
			clips[i].Start = cursor
			clips[i].End = cursor + d
			cursor += d
		}
		t.Clips = clips
		return t
	})
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

func clearTimeline(s State) State {
	tracks := make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		t.Clips = []Clip{}
		tracks[i] = t
	}
	s.Tracks = tracks
	s.Duration = 0
	s.PlayheadTime = 0
	s.Selection = Selection{}
	return s
}

func moveTrack(s State, a MoveTrack) State {
	ti := s.trackIndex(a.TrackID)
	if ti < 0 {
		return s
	}
	var target int
	switch a.Direction {
	case DirectionUp:
		target = ti - 1
	case DirectionDown:
		target = ti + 1
	default:
		return s
	}
	if target < 0 || target >= len(s.Tracks) {
		return s
	}

	tracks := append([]Track(nil), s.Tracks...)
	tracks[ti], tracks[target] = tracks[target], tracks[ti]
	s.Tracks = tracks
	return s
}

// loadProject merges p over s and re-establishes the state invariants, since
// incoming tracks come from outside the reducer.
func loadProject(s State, p Patch) State {
	if p.Tracks != nil {
		tracks := CloneTracks(*p.Tracks)
		for i := range tracks {
			if tracks[i].ID == "" {
				tracks[i].ID = NewID(TrackIDPrefix)
			}
			if tracks[i].Clips == nil {
				tracks[i].Clips = []Clip{}
			}
			for j := range tracks[i].Clips {
				normalizeClip(&tracks[i].Clips[j])
			}
			sortClips(tracks[i].Clips)
		}
		s.Tracks = tracks
	}
	if p.PlayheadTime != nil {
		s.PlayheadTime = nonNegative(*p.PlayheadTime)
	}
	if p.IsPlaying != nil {
		s.IsPlaying = *p.IsPlaying
	}
	if p.IsLooping != nil {
		s.IsLooping = *p.IsLooping
	}
	if p.Zoom != nil && !math.IsNaN(*p.Zoom) {
		s.Zoom = clamp(*p.Zoom, MinZoom, MaxZoom)
	}
	if p.ScrollX != nil {
		s.ScrollX = nonNegative(*p.ScrollX)
	}
	if p.FPS != nil {
		s.FPS = *p.FPS
	}
	if p.Width != nil {
		s.Width = *p.Width
	}
	if p.Height != nil {
		s.Height = *p.Height
	}
	if p.AspectRatio != nil {
		s.AspectRatio = *p.AspectRatio
		if !s.AspectRatio.Valid() {
			s.AspectRatio = Ratio16x9
			s.Width, s.Height = Dimensions(Ratio16x9)
		}
	}
	if p.SnapEnabled != nil {
		s.SnapEnabled = *p.SnapEnabled
	}

	if !s.Selection.Empty() {
		if _, ci, ok := s.FindClip(s.Selection.TrackID, s.Selection.ClipID); !ok || ci < 0 {
			s.Selection = Selection{}
		}
	}
	s.Duration = RecalcDuration(s.Tracks)
	return s
}

// withTrack replaces track i with fn's result on a copy of the track list.
func withTrack(s State, i int, fn func(Track) Track) State {
	tracks := append([]Track(nil), s.Tracks...)
	tracks[i] = fn(tracks[i])
	s.Tracks = tracks
	return s
}

// normalizeClip keeps a clip at or after zero and at least MinClipDuration
// long, and pulls adjustable properties back into range. Unset properties
// stay unset.
func normalizeClip(c *Clip) {
	c.Start = nonNegative(c.Start)
	if c.End < c.Start+MinClipDuration || math.IsNaN(c.End) {
		c.End = c.Start + MinClipDuration
	}

	c.Volume = clampPtr(c.Volume, 0, 1)
	c.Opacity = clampPtr(c.Opacity, 0, 1)
	c.Brightness = clampPtr(c.Brightness, MinAdjustment, MaxAdjustment)
	c.Contrast = clampPtr(c.Contrast, MinAdjustment, MaxAdjustment)
	c.Saturation = clampPtr(c.Saturation, MinAdjustment, MaxAdjustment)
	c.FadeIn = clampPtr(c.FadeIn, 0, math.Inf(1))
	c.FadeOut = clampPtr(c.FadeOut, 0, math.Inf(1))
	c.TransitionDuration = clampPtr(c.TransitionDuration, 0, math.Inf(1))
	if c.Speed != nil && !(*c.Speed > 0) {
		c.Speed = nil
	}
	if c.Transition != nil && !c.Transition.Valid() {
		c.Transition = nil
	}
}

// clampPtr returns p, or a fresh pointer to the clamped value when *p is out
// of range. NaN falls to lo.
func clampPtr(p *float64, lo, hi float64) *float64 {
	if p == nil || (*p >= lo && *p <= hi) {
		return p
	}
	v := lo
	if *p > hi {
		v = hi
	}
	return &v
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
