// Package timeline holds the multi-track timeline data model and the pure
// reducer that applies editing actions to it.
package timeline

import "sort"

const (
	MinZoom     = 10.0
	MaxZoom     = 200.0
	DefaultZoom = 50.0

	// MinClipDuration is the shortest span a clip may be trimmed or moved to.
	MinClipDuration = 0.1

	// Brightness, contrast and saturation adjustments share this range.
	MinAdjustment = -100.0
	MaxAdjustment = 100.0

	DefaultFPS    = 30
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

type ClipKind string

const (
	ClipVideo ClipKind = "video"
	ClipImage ClipKind = "image"
	ClipText  ClipKind = "text"
	ClipAudio ClipKind = "audio"
)

// IsMedia reports whether the kind is backed by source footage, which is
// when trimStart and trimEnd carry meaning.
func (k ClipKind) IsMedia() bool {
	return k == ClipVideo || k == ClipAudio
}

type TrackKind string

const (
	TrackVideo   TrackKind = "video"
	TrackAudio   TrackKind = "audio"
	TrackText    TrackKind = "text"
	TrackOverlay TrackKind = "overlay"
)

type TransitionKind string

const (
	TransitionNone       TransitionKind = "none"
	TransitionCrossfade  TransitionKind = "crossfade"
	TransitionDissolve   TransitionKind = "dissolve"
	TransitionFadeBlack  TransitionKind = "fade-black"
	TransitionFadeWhite  TransitionKind = "fade-white"
	TransitionWipeLeft   TransitionKind = "wipe-left"
	TransitionWipeRight  TransitionKind = "wipe-right"
	TransitionSlideLeft  TransitionKind = "slide-left"
	TransitionSlideRight TransitionKind = "slide-right"
	TransitionZoom       TransitionKind = "zoom"
)

var transitionKinds = map[TransitionKind]bool{
	TransitionNone:       true,
	TransitionCrossfade:  true,
	TransitionDissolve:   true,
	TransitionFadeBlack:  true,
	TransitionFadeWhite:  true,
	TransitionWipeLeft:   true,
	TransitionWipeRight:  true,
	TransitionSlideLeft:  true,
	TransitionSlideRight: true,
	TransitionZoom:       true,
}

// Valid reports whether t is one of the known transition kinds.
func (t TransitionKind) Valid() bool {
	return transitionKinds[t]
}

// TextStyle is only present on text clips.
type TextStyle struct {
	FontSize        float64 `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	Color           string  `json:"color"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	// Position is the vertical anchor: top, center or bottom.
	Position string `json:"position"`
}

// Clip is a single segment placed on a track. Start and End are absolute
// timeline seconds; TrimStart and TrimEnd are seconds into the source media.
//
// Optional properties are pointers: nil means "use the default", which the
// accessor methods below resolve.
type Clip struct {
	ID        string   `json:"id"`
	Kind      ClipKind `json:"type"`
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	TrimStart float64  `json:"trimStart"`
	TrimEnd   float64  `json:"trimEnd"`
	Name      string   `json:"name"`

	Src            *string  `json:"src,omitempty"`
	Thumbnail      *string  `json:"thumbnail,omitempty"`
	SourceDuration *float64 `json:"sourceDuration,omitempty"`

	Text      *string    `json:"text,omitempty"`
	TextStyle *TextStyle `json:"textStyle,omitempty"`

	Volume             *float64        `json:"volume,omitempty" validate:"omitempty,gte=0,lte=1"`
	Speed              *float64        `json:"speed,omitempty" validate:"omitempty,gt=0"`
	FadeIn             *float64        `json:"fadeIn,omitempty" validate:"omitempty,gte=0"`
	FadeOut            *float64        `json:"fadeOut,omitempty" validate:"omitempty,gte=0"`
	Opacity            *float64        `json:"opacity,omitempty" validate:"omitempty,gte=0,lte=1"`
	Brightness         *float64        `json:"brightness,omitempty" validate:"omitempty,gte=-100,lte=100"`
	Contrast           *float64        `json:"contrast,omitempty" validate:"omitempty,gte=-100,lte=100"`
	Saturation         *float64        `json:"saturation,omitempty" validate:"omitempty,gte=-100,lte=100"`
	ColorLabel         *string         `json:"colorLabel,omitempty"`
	Transition         *TransitionKind `json:"transition,omitempty" validate:"omitempty,transition"`
	TransitionDuration *float64        `json:"transitionDuration,omitempty" validate:"omitempty,gte=0"`
}

func (c Clip) Duration() float64 {
	return c.End - c.Start
}

func (c Clip) EffectiveVolume() float64 {
	return valueOr(c.Volume, 1)
}

func (c Clip) EffectiveSpeed() float64 {
	return valueOr(c.Speed, 1)
}

func (c Clip) EffectiveFadeIn() float64 {
	return valueOr(c.FadeIn, 0)
}

func (c Clip) EffectiveFadeOut() float64 {
	return valueOr(c.FadeOut, 0)
}

func (c Clip) EffectiveOpacity() float64 {
	return valueOr(c.Opacity, 1)
}

func (c Clip) EffectiveBrightness() float64 {
	return valueOr(c.Brightness, 0)
}

func (c Clip) EffectiveContrast() float64 {
	return valueOr(c.Contrast, 0)
}

func (c Clip) EffectiveSaturation() float64 {
	return valueOr(c.Saturation, 0)
}

func (c Clip) EffectiveTransition() TransitionKind {
	if c.Transition == nil {
		return TransitionNone
	}
	return *c.Transition
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Clone returns a copy of c that shares no pointers with it.
func (c Clip) Clone() Clip {
	out := c
	out.Src = clonePtr(c.Src)
	out.Thumbnail = clonePtr(c.Thumbnail)
	out.SourceDuration = clonePtr(c.SourceDuration)
	out.Text = clonePtr(c.Text)
	out.TextStyle = clonePtr(c.TextStyle)
	out.Volume = clonePtr(c.Volume)
	out.Speed = clonePtr(c.Speed)
	out.FadeIn = clonePtr(c.FadeIn)
	out.FadeOut = clonePtr(c.FadeOut)
	out.Opacity = clonePtr(c.Opacity)
	out.Brightness = clonePtr(c.Brightness)
	out.Contrast = clonePtr(c.Contrast)
	out.Saturation = clonePtr(c.Saturation)
	out.ColorLabel = clonePtr(c.ColorLabel)
	out.Transition = clonePtr(c.Transition)
	out.TransitionDuration = clonePtr(c.TransitionDuration)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Track is an ordered lane of clips. Kind is advisory: clips of any kind may
// be placed on any track.
type Track struct {
	ID     string    `json:"id"`
	Kind   TrackKind `json:"type"`
	Label  string    `json:"label"`
	Clips  []Clip    `json:"clips"`
	Muted  bool      `json:"muted"`
	Locked bool      `json:"locked"`
}

func (t Track) Clone() Track {
	out := t
	out.Clips = make([]Clip, len(t.Clips))
	for i, c := range t.Clips {
		out.Clips[i] = c.Clone()
	}
	return out
}

// CloneTracks deep-copies a track list. A nil input yields an empty list.
func CloneTracks(tracks []Track) []Track {
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = t.Clone()
	}
	return out
}

// Selection names at most one clip. Both ids are set or both are empty.
type Selection struct {
	ClipID  string `json:"clipId,omitempty"`
	TrackID string `json:"trackId,omitempty"`
}

func (s Selection) Empty() bool {
	return s.ClipID == "" && s.TrackID == ""
}

// State is the aggregate root of the editor.
type State struct {
	Tracks       []Track     `json:"tracks"`
	PlayheadTime float64     `json:"playheadTime"`
	Duration     float64     `json:"duration"`
	IsPlaying    bool        `json:"isPlaying"`
	IsLooping    bool        `json:"isLooping"`
	Selection    Selection   `json:"selection"`
	Zoom         float64     `json:"zoom"`
	ScrollX      float64     `json:"scrollX"`
	FPS          int         `json:"fps"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	AspectRatio  AspectRatio `json:"aspectRatio"`
	SnapEnabled  bool        `json:"snapEnabled"`
}

// DefaultState is the state of a freshly opened, empty project.
func DefaultState() State {
	return State{
		Tracks:      []Track{},
		Zoom:        DefaultZoom,
		FPS:         DefaultFPS,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		AspectRatio: Ratio16x9,
		SnapEnabled: true,
	}
}

// FindClip returns the track index and clip index of clipID on trackID.
func (s State) FindClip(trackID, clipID string) (int, int, bool) {
	ti := s.trackIndex(trackID)
	if ti < 0 {
		return -1, -1, false
	}
	for ci, c := range s.Tracks[ti].Clips {
		if c.ID == clipID {
			return ti, ci, true
		}
	}
	return ti, -1, false
}

func (s State) trackIndex(trackID string) int {
	for i, t := range s.Tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}

// ClipCount is the number of clips across all tracks.
func (s State) ClipCount() int {
	n := 0
	for _, t := range s.Tracks {
		n += len(t.Clips)
	}
	return n
}

// RecalcDuration returns the latest clip end across all tracks, or 0.
func RecalcDuration(tracks []Track) float64 {
	var latest float64
	for _, t := range tracks {
		for _, c := range t.Clips {
			if c.End > latest {
				latest = c.End
			}
		}
	}
	return latest
}

func sortClips(clips []Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].Start < clips[j].Start
	})
}

// Patch is a partial state merged by LoadProject. Nil fields are left as they
// are on the current state.
type Patch struct {
	Tracks       *[]Track
	PlayheadTime *float64
	IsPlaying    *bool
	IsLooping    *bool
	Zoom         *float64
	ScrollX      *float64
	FPS          *int
	Width        *int
	Height       *int
	AspectRatio  *AspectRatio
	SnapEnabled  *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// ClipUpdate is shallow-merged into a clip by UpdateClip. Identity and kind
// are fixed for a clip's lifetime and so are not updatable.
type ClipUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Start     *float64 `json:"start,omitempty"`
	End       *float64 `json:"end,omitempty"`
	TrimStart *float64 `json:"trimStart,omitempty"`
	TrimEnd   *float64 `json:"trimEnd,omitempty"`

	Src            *string  `json:"src,omitempty"`
	Thumbnail      *string  `json:"thumbnail,omitempty"`
	SourceDuration *float64 `json:"sourceDuration,omitempty"`

	Text      *string    `json:"text,omitempty"`
	TextStyle *TextStyle `json:"textStyle,omitempty"`

	Volume             *float64        `json:"volume,omitempty" validate:"omitempty,gte=0,lte=1"`
	Speed              *float64        `json:"speed,omitempty" validate:"omitempty,gt=0"`
	FadeIn             *float64        `json:"fadeIn,omitempty" validate:"omitempty,gte=0"`
	FadeOut            *float64        `json:"fadeOut,omitempty" validate:"omitempty,gte=0"`
	Opacity            *float64        `json:"opacity,omitempty" validate:"omitempty,gte=0,lte=1"`
	Brightness         *float64        `json:"brightness,omitempty" validate:"omitempty,gte=-100,lte=100"`
	Contrast           *float64        `json:"contrast,omitempty" validate:"omitempty,gte=-100,lte=100"`
	Saturation         *float64        `json:"saturation,omitempty" validate:"omitempty,gte=-100,lte=100"`
	ColorLabel         *string         `json:"colorLabel,omitempty"`
	Transition         *TransitionKind `json:"transition,omitempty" validate:"omitempty,transition"`
	TransitionDuration *float64        `json:"transitionDuration,omitempty" validate:"omitempty,gte=0"`
}

func (u ClipUpdate) apply(c Clip) Clip {
	setIf(&c.Name, u.Name)
	setIf(&c.Start, u.Start)
	setIf(&c.End, u.End)
	setIf(&c.TrimStart, u.TrimStart)
	setIf(&c.TrimEnd, u.TrimEnd)
	mergePtr(&c.Src, u.Src)
	mergePtr(&c.Thumbnail, u.Thumbnail)
	mergePtr(&c.SourceDuration, u.SourceDuration)
	mergePtr(&c.Text, u.Text)
	mergePtr(&c.TextStyle, u.TextStyle)
	mergePtr(&c.Volume, u.Volume)
	mergePtr(&c.Speed, u.Speed)
	mergePtr(&c.FadeIn, u.FadeIn)
	mergePtr(&c.FadeOut, u.FadeOut)
	mergePtr(&c.Opacity, u.Opacity)
	mergePtr(&c.Brightness, u.Brightness)
	mergePtr(&c.Contrast, u.Contrast)
	mergePtr(&c.Saturation, u.Saturation)
	mergePtr(&c.ColorLabel, u.ColorLabel)
	mergePtr(&c.Transition, u.Transition)
	mergePtr(&c.TransitionDuration, u.TransitionDuration)
	return c
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func mergePtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = clonePtr(v)
	}
}
