package domain

import (
	"fmt"
	"time"
)

// TimeWindow is an inclusive calendar selection. Start and End accept
// "yyyy", "yyyy-mm", or "yyyy-mm-dd"; Start expands to the beginning of its
// period and End to the end of its period.
type TimeWindow struct {
	Start string
	End   string
}

// Key renders the window for output file naming.
func (w *TimeWindow) Key() string {
	if w == nil {
		return "None-None"
	}
	return fmt.Sprintf("%s-%s", w.Start, w.End)
}

func parseBound(s string, end bool) (time.Time, error) {
	layouts := []string{"2006", "2006-01", "2006-01-02"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if !end {
			return t, nil
		}
		switch layout {
		case "2006":
			return t.AddDate(1, 0, 0).Add(-time.Nanosecond), nil
		case "2006-01":
			return t.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
		default:
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time bound %q: want yyyy, yyyy-mm, or yyyy-mm-dd", s)
}

// SelectTimeWindow slices the time axis to the inclusive window. A nil
// window is a no-op.
func SelectTimeWindow(f *Field, w *TimeWindow) (*Field, error) {
	if w == nil {
		return f, nil
	}
	start, err := parseBound(w.Start, false)
	if err != nil {
		return nil, err
	}
	end, err := parseBound(w.End, true)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, len(f.Time))
	for t, ts := range f.Time {
		if !ts.Before(start) && !ts.After(end) {
			keep = append(keep, t)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("%w: window %s does not overlap the time axis",
			ErrEmptySelection, w.Key())
	}
	return sliceTime(f, keep), nil
}
