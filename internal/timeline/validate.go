package timeline

import (
	"errors"
	"fmt"
)

// Validate checks the invariants every reducer transition maintains and
// returns all violations joined together.
func Validate(s State) error {
	var errs []error
	for _, t := range s.Tracks {
		for i, c := range t.Clips {
			if c.End-c.Start < MinClipDuration-1e-9 {
				errs = append(errs, fmt.Errorf("track %s: clip %s is shorter than %.1fs", t.ID, c.ID, MinClipDuration))
			}
			if c.Start < 0 {
				errs = append(errs, fmt.Errorf("track %s: clip %s starts before zero", t.ID, c.ID))
			}
			for _, msg := range propertyViolations(c) {
				errs = append(errs, fmt.Errorf("track %s: clip %s %s", t.ID, c.ID, msg))
			}
			if i > 0 && c.Start < t.Clips[i-1].Start {
				errs = append(errs, fmt.Errorf("track %s: clip %s is out of start order", t.ID, c.ID))
			}
		}
	}
	if want := RecalcDuration(s.Tracks); s.Duration != want {
		errs = append(errs, fmt.Errorf("duration is %g, clips end at %g", s.Duration, want))
	}
	if s.Zoom < MinZoom || s.Zoom > MaxZoom {
		errs = append(errs, fmt.Errorf("zoom %g outside [%g, %g]", s.Zoom, MinZoom, MaxZoom))
	}
	if s.ScrollX < 0 {
		errs = append(errs, fmt.Errorf("scrollX %g is negative", s.ScrollX))
	}
	if s.PlayheadTime < 0 {
		errs = append(errs, fmt.Errorf("playhead %g is negative", s.PlayheadTime))
	}
	if (s.Selection.ClipID == "") != (s.Selection.TrackID == "") {
		errs = append(errs, errors.New("selection has only one of clip and track set"))
	} else if !s.Selection.Empty() {
		if _, ci, ok := s.FindClip(s.Selection.TrackID, s.Selection.ClipID); !ok || ci < 0 {
			errs = append(errs, fmt.Errorf("selection references missing clip %s on track %s", s.Selection.ClipID, s.Selection.TrackID))
		}
	}
	return errors.Join(errs...)
}

// propertyViolations checks adjustable properties through their effective
// values, so unset properties always pass.
func propertyViolations(c Clip) []string {
	var out []string
	inRange := func(name string, v, lo, hi float64) {
		if !(v >= lo && v <= hi) {
			out = append(out, fmt.Sprintf("%s %g outside [%g, %g]", name, v, lo, hi))
		}
	}
	inRange("volume", c.EffectiveVolume(), 0, 1)
	inRange("opacity", c.EffectiveOpacity(), 0, 1)
	inRange("brightness", c.EffectiveBrightness(), MinAdjustment, MaxAdjustment)
	inRange("contrast", c.EffectiveContrast(), MinAdjustment, MaxAdjustment)
	inRange("saturation", c.EffectiveSaturation(), MinAdjustment, MaxAdjustment)
	if c.EffectiveFadeIn() < 0 || c.EffectiveFadeOut() < 0 {
		out = append(out, "has a negative fade")
	}
	if !(c.EffectiveSpeed() > 0) {
		out = append(out, fmt.Sprintf("speed %g is not positive", c.EffectiveSpeed()))
	}
	if tr := c.EffectiveTransition(); !tr.Valid() {
		out = append(out, fmt.Sprintf("transition %q is unknown", tr))
	}
	return out
}
