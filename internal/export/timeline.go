package export

import (
	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

// DefaultTrack returns the id of the first video track, or the first track
// when there is no video track.
func DefaultTrack(s timeline.State) (string, bool) {
	for _, t := range s.Tracks {
		if t.Kind == timeline.TrackVideo {
			return t.ID, true
		}
	}
	if len(s.Tracks) > 0 {
		return s.Tracks[0].ID, true
	}
	return "", false
}

// FromTrack turns a track's clips into EDL events in start order. Record
// times are the clip's timeline placement; source times start at the clip's
// trim offset and run for the placed length scaled by playback speed. Text
// clips carry no media and are skipped. Media clips without a source
// reference are exported by name and also reported as unresolved.
func FromTrack(s timeline.State, trackID string) ([]ResolvedClip, []string, error) {
	var track *timeline.Track
	for i := range s.Tracks {
		if s.Tracks[i].ID == trackID {
			track = &s.Tracks[i]
			break
		}
	}
	if track == nil {
		return nil, nil, ErrTrackNotFound
	}

	clips := make([]ResolvedClip, 0, len(track.Clips))
	unresolved := make([]string, 0)
	for _, c := range track.Clips {
		if c.Kind == timeline.ClipText {
			continue
		}

		name := SanitizeName(c.Name, 160)
		if name == "" {
			name = c.ID
		}
		media := ""
		if c.Src != nil {
			media = *c.Src
		}
		if media == "" {
			unresolved = append(unresolved, c.ID)
		}

		channel := "V"
		if c.Kind == timeline.ClipAudio {
			channel = "A"
		}

		// Stills have no source timecode to trim into.
		srcIn := 0.0
		if c.Kind.IsMedia() {
			srcIn = c.TrimStart
		}
		srcOut := srcIn + c.Duration()*c.EffectiveSpeed()

		clips = append(clips, ResolvedClip{
			ClipID:      c.ID,
			ClipName:    name,
			MediaPath:   media,
			Channel:     channel,
			SourceInMs:  secondsToMs(srcIn),
			SourceOutMs: secondsToMs(srcOut),
			RecordInMs:  secondsToMs(c.Start),
			RecordOutMs: secondsToMs(c.End),
		})
	}

	if len(clips) == 0 {
		return nil, unresolved, ErrNoMediaClips
	}
	return clips, unresolved, nil
}
