package types

import "time"

// Reading is a single row from the device export, in raw device units.
// Line is the 1-based line number in the source file.
type Reading struct {
	Timestamp time.Time
	Value     float64
	Line      int
}

// Sample is a Reading converted into display units.  Time is the wall clock
// used for windowing and bucketing and carries no zone of its own; Instant is
// the original timestamp with its recorded offset.
type Sample struct {
	Time    time.Time
	Instant time.Time
	Value   float64
}

// Window is the trailing N-day slice of samples that every aggregate is computed over.
type Window struct {
	Start   time.Time // 00:00:00 of the first calendar day in the window
	End     time.Time // latest sample time
	Days    int
	Samples []Sample
}

// FirstDate returns the calendar date of the earliest sample in the window.
func (w *Window) FirstDate() time.Time {
	return Midnight(w.Samples[0].Time)
}

// LastDate returns the calendar date of the latest sample in the window.
func (w *Window) LastDate() time.Time {
	return Midnight(w.Samples[len(w.Samples)-1].Time)
}

// HourlyPoint is the mean of all samples within one clock hour.
type HourlyPoint struct {
	Time  time.Time `json:"time"`
	Mean  float64   `json:"mean"`
	Count int       `json:"count"`
}

// DailySummary holds the statistics for one calendar day.
type DailySummary struct {
	Date  time.Time `json:"date"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Mean  float64   `json:"mean"`
	Count int       `json:"count"`
}

// Thresholds partition the display range into low, target and high zones.
// Low and High bound the target zone; Ceiling is the top of the high zone.
type Thresholds struct {
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Ceiling float64 `json:"ceiling"`
}

// TimeInRange is the fraction of samples falling in each zone.
type TimeInRange struct {
	Low    float64 `json:"low"`
	Target float64 `json:"target"`
	High   float64 `json:"high"`
}

// Summary is everything the renderer and the exporters need from a run.
type Summary struct {
	Source      string         `json:"source"`
	DisplayUnit string         `json:"display_unit"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Days        int            `json:"window_days"`
	FirstDate   time.Time      `json:"first_date"`
	LastDate    time.Time      `json:"last_date"`
	Readings    int            `json:"readings"`
	Skipped     int            `json:"skipped"`
	Hourly      []HourlyPoint  `json:"hourly"`
	Daily       []DailySummary `json:"daily"`
	WeeklyAvg   float64        `json:"weekly_average"`
	StdDev      float64        `json:"std_dev"`
	CV          float64        `json:"coefficient_of_variation"`
	InRange     TimeInRange    `json:"time_in_range"`
	Thresholds  Thresholds     `json:"thresholds"`
}

// Midnight truncates t to 00:00:00 of its calendar day, keeping t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WallClock returns t's wall clock in its own zone, relabelled as UTC so that
// readings taken under different offsets compare by the clock the device showed.
func WallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
