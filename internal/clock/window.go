// Package clock evaluates the civil-time window gate that decides
// whether a season's job is permitted to tick right now.
package clock

import (
	"time"

	"clubarchive/ingestion/internal/models"
)

// Gate evaluates window admission against a fixed civil time zone,
// regardless of host locale.
type Gate struct {
	loc *time.Location
}

// NewGate loads the given zone name (e.g. "America/New_York") once and
// returns a Gate that evaluates every admission check against it.
func NewGate(zoneName string) (*Gate, error) {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		return nil, err
	}
	return &Gate{loc: loc}, nil
}

// weekdayIndex converts Go's time.Weekday (0=Sun..6=Sat) into the
// domain's 0=Mon..6=Sun indexing.
func weekdayIndex(t time.Time) int {
	wd := int(t.Weekday())
	return (wd + 6) % 7
}

// Admitted reports whether now, mapped into the gate's civil zone,
// falls on one of cfg's active weekdays and within [start_hour, end_hour).
// A paused config is never admitted.
func (g *Gate) Admitted(cfg *models.SchedulerConfig, now time.Time) bool {
	if cfg.IsPaused {
		return false
	}

	civil := now.In(g.loc)
	dow := weekdayIndex(civil)

	dayOK := false
	for _, d := range cfg.ActiveDays {
		if d == dow {
			dayOK = true
			break
		}
	}
	if !dayOK {
		return false
	}

	hour := civil.Hour()
	return hour >= cfg.StartHour && hour < cfg.EndHour
}
