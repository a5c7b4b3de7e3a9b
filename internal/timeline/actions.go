package timeline

// ActionType is the wire name of an action.
type ActionType string

const (
	ActionSetPlayhead    ActionType = "SET_PLAYHEAD"
	ActionSetPlaying     ActionType = "SET_PLAYING"
	ActionSelectClip     ActionType = "SELECT_CLIP"
	ActionAddClip        ActionType = "ADD_CLIP"
	ActionRemoveClip     ActionType = "REMOVE_CLIP"
	ActionMoveClip       ActionType = "MOVE_CLIP"
	ActionTrimClip       ActionType = "TRIM_CLIP"
	ActionAddTrack       ActionType = "ADD_TRACK"
	ActionRemoveTrack    ActionType = "REMOVE_TRACK"
	ActionToggleMute     ActionType = "TOGGLE_TRACK_MUTE"
	ActionToggleLock     ActionType = "TOGGLE_TRACK_LOCK"
	ActionSetZoom        ActionType = "SET_ZOOM"
	ActionSetScrollX     ActionType = "SET_SCROLL_X"
	ActionLoadProject    ActionType = "LOAD_PROJECT"
	ActionUpdateClip     ActionType = "UPDATE_CLIP"
	ActionReorderClip    ActionType = "REORDER_CLIP"
	ActionRippleDelete   ActionType = "RIPPLE_DELETE"
	ActionClearTimeline  ActionType = "CLEAR_TIMELINE"
	ActionMoveTrack      ActionType = "MOVE_TRACK"
	ActionSetLoop        ActionType = "SET_LOOP"
	ActionSetAspectRatio ActionType = "SET_ASPECT_RATIO"
	ActionToggleSnap     ActionType = "TOGGLE_SNAP"
	ActionSelectAllClips ActionType = "SELECT_ALL_CLIPS"
)

// Action is the closed set of edits the reducer understands. The unexported
// method keeps implementations inside this package.
type Action interface {
	Type() ActionType
	action()
}

type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

type SetPlayhead struct{ Time float64 }

type SetPlaying struct{ Playing bool }

// SelectClip with empty ids clears the selection.
type SelectClip struct {
	ClipID  string
	TrackID string
}

type AddClip struct {
	TrackID string
	Clip    Clip
}

type RemoveClip struct {
	TrackID string
	ClipID  string
}

type MoveClip struct {
	FromTrackID string
	ToTrackID   string
	ClipID      string
	NewStart    float64
}

type TrimClip struct {
	TrackID string
	ClipID  string
	Edge    Edge
	NewTime float64
}

type AddTrack struct{ Track Track }

type RemoveTrack struct{ TrackID string }

type ToggleTrackMute struct{ TrackID string }

type ToggleTrackLock struct{ TrackID string }

type SetZoom struct{ Zoom float64 }

type SetScrollX struct{ X float64 }

type LoadProject struct{ Patch Patch }

type UpdateClip struct {
	TrackID string
	ClipID  string
	Updates ClipUpdate
}

type ReorderClip struct {
	TrackID  string
	ClipID   string
	NewIndex int
}

type RippleDelete struct {
	TrackID string
	ClipID  string
}

type ClearTimeline struct{}

type MoveTrack struct {
	TrackID   string
	Direction Direction
}

type SetLoop struct{ Looping bool }

type SetAspectRatio struct{ Ratio AspectRatio }

type ToggleSnap struct{}

type SelectAllClips struct{}

func (SetPlayhead) Type() ActionType     { return ActionSetPlayhead }
func (SetPlaying) Type() ActionType      { return ActionSetPlaying }
func (SelectClip) Type() ActionType      { return ActionSelectClip }
func (AddClip) Type() ActionType         { return ActionAddClip }
func (RemoveClip) Type() ActionType      { return ActionRemoveClip }
func (MoveClip) Type() ActionType        { return ActionMoveClip }
func (TrimClip) Type() ActionType        { return ActionTrimClip }
func (AddTrack) Type() ActionType        { return ActionAddTrack }
func (RemoveTrack) Type() ActionType     { return ActionRemoveTrack }
func (ToggleTrackMute) Type() ActionType { return ActionToggleMute }
func (ToggleTrackLock) Type() ActionType { return ActionToggleLock }
func (SetZoom) Type() ActionType         { return ActionSetZoom }
func (SetScrollX) Type() ActionType      { return ActionSetScrollX }
func (LoadProject) Type() ActionType     { return ActionLoadProject }
func (UpdateClip) Type() ActionType      { return ActionUpdateClip }
func (ReorderClip) Type() ActionType     { return ActionReorderClip }
func (RippleDelete) Type() ActionType    { return ActionRippleDelete }
func (ClearTimeline) Type() ActionType   { return ActionClearTimeline }
func (MoveTrack) Type() ActionType       { return ActionMoveTrack }
func (SetLoop) Type() ActionType         { return ActionSetLoop }
func (SetAspectRatio) Type() ActionType  { return ActionSetAspectRatio }
func (ToggleSnap) Type() ActionType      { return ActionToggleSnap }
func (SelectAllClips) Type() ActionType  { return ActionSelectAllClips }

func (SetPlayhead) action()     {}
func (SetPlaying) action()      {}
func (SelectClip) action()      {}
func (AddClip) action()         {}
func (RemoveClip) action()      {}
func (MoveClip) action()        {}
func (TrimClip) action()        {}
func (AddTrack) action()        {}
func (RemoveTrack) action()     {}
func (ToggleTrackMute) action() {}
func (ToggleTrackLock) action() {}
func (SetZoom) action()         {}
func (SetScrollX) action()      {}
func (LoadProject) action()     {}
func (UpdateClip) action()      {}
func (ReorderClip) action()     {}
func (RippleDelete) action()    {}
func (ClearTimeline) action()   {}
func (MoveTrack) action()       {}
func (SetLoop) action()         {}
func (SetAspectRatio) action()  {}
func (ToggleSnap) action()      {}
func (SelectAllClips) action()  {}
