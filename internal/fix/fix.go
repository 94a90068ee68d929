// Package fix holds the process-wide fix snapshot: the latest parsed
// UTC/GPS/position values and their validity flags. It is updated by the
// frame decoder (package parser) and read by callers through Get.
//
// Per the core's single-threaded, caller-driven discipline, Store applies
// no internal locking. Callers that read from a different goroutine than
// the one driving the parser must serialize access themselves.
package fix

import (
	"time"

	"github.com/gnssgw/gnss-timebase/gnsserr"
)

// Mode is the GNSS fix mode reported by an RMC sentence.
type Mode byte

const (
	ModeNone         Mode = 'N'
	ModeAutonomous   Mode = 'A'
	ModeDifferential Mode = 'D'
)

// Date is a broken-down calendar timestamp as parsed from RMC/GGA, plus the
// fractional seconds carried separately because the seconds field itself
// may be the leap-second value 60.
type Date struct {
	Year       int // 2-digit years are expanded to 2000+yy by the caller that sets this
	Month      int // 1-12
	Day        int // 1-31
	Hour       int // 0-23
	Minute     int // 0-59
	Second     int // 0-60, 60 admits a leap second
	FracSecond float64
}

// Location is a position fix as decoded from GGA.
type Location struct {
	Lat float64 // signed, degrees + minutes/60, negative for S
	Lon float64 // signed, degrees + minutes/60, negative for W
	Alt int     // integer meters
}

// Snapshot is the latest fix state, exactly the data model of spec §3.
type Snapshot struct {
	Date Date

	GPSWeek   int16
	GPSITowMs uint32
	GPSFTowNs int32

	Loc Location

	Mode   Mode
	NumSat int

	TimeValid bool
	PosValid  bool
}

// Store owns exactly one live Snapshot. It is the sole mutation point for
// the fix state; parser functions are handed a *Store to update.
type Store struct {
	s Snapshot
}

// NewStore returns an empty store: no fix valid yet, mode 'N'.
func NewStore() *Store {
	return &Store{s: Snapshot{Mode: ModeNone}}
}

// Raw returns a copy of the underlying snapshot, validity flags and all,
// for callers that want to inspect fields Get() doesn't expose directly
// (e.g. NumSat, Mode).
func (st *Store) Raw() Snapshot { return st.s }

// CommitRMCTime commits the time/date portion of an RMC fix and marks it
// valid. Called by the parser only after the time and date scans both
// succeeded and mode is A or D; the mode character itself is always
// recorded via SetMode regardless of whether the scans succeeded.
func (st *Store) CommitRMCTime(d Date) {
	st.s.Date = d
	st.s.TimeValid = true
}

// ClearTime marks the time/date portion invalid without touching the
// stored numeric fields, which may be stale and must not be consulted.
func (st *Store) ClearTime() {
	st.s.TimeValid = false
}

// CommitGPSTime commits native GPS week/iTOW/fTOW from a UBX NAV-TIMEGPS
// frame whose towValid and weekValid bits were both set.
func (st *Store) CommitGPSTime(week int16, itowMs uint32, ftowNs int32) {
	st.s.GPSWeek = week
	st.s.GPSITowMs = itowMs
	st.s.GPSFTowNs = ftowNs
	st.s.TimeValid = true
}

// CommitPosition commits a position fix and marks it valid.
func (st *Store) CommitPosition(loc Location, numSat int) {
	st.s.Loc = loc
	st.s.NumSat = numSat
	st.s.PosValid = true
}

// ClearPosition marks the position portion invalid without touching the
// stored numeric fields.
func (st *Store) ClearPosition() {
	st.s.PosValid = false
}

// SetMode records the RMC mode character, clamped to {N,A,D} by the
// caller, independent of whether the fix ended up time_valid.
func (st *Store) SetMode(mode Mode) {
	st.s.Mode = mode
}

// UTC assembles UTC seconds+nanoseconds from the stored Date, following the
// broken-down-time rules of spec §4.C: the value is already UTC, so no
// timezone offset is applied (see DESIGN.md for the open-question decision).
func (d Date) UTC() time.Time {
	nsec := int(d.FracSecond * 1e9)
	// time.Date rolls second 60 into the next minute, which is exactly
	// the leap-second behavior spec §3 asks for.
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, nsec, time.UTC)
}

// GPSSeconds computes GPS seconds-since-epoch and nanoseconds from the
// stored native week/iTOW/fTOW per spec §4.C.
func (st *Store) GPSSeconds() (sec int64, nsec int64) {
	sec = int64(st.s.GPSWeek)*604800 + int64(st.s.GPSITowMs)/1000
	fracMs := int64(st.s.GPSITowMs) % 1000
	nsec = fracMs*1_000_000 + int64(st.s.GPSFTowNs)
	return sec, nsec
}

// Result is the subset of the snapshot a caller asked Get to assemble.
type Result struct {
	UTC     time.Time
	GPSSec  int64
	GPSNsec int64
	Loc     Location
	// Err is the localization uncertainty, always zero per spec §1 Non-goals.
	Err float64
}

// Get returns any requested subset of the current snapshot. Asking for a
// field whose validity flag is false returns gnsserr.ErrUnavailable instead
// of stale data.
func (st *Store) Get(wantUTC, wantGPS, wantPos, wantErr bool) (Result, error) {
	var r Result

	if wantUTC {
		if !st.s.TimeValid {
			return Result{}, gnsserr.ErrUnavailable
		}
		r.UTC = st.s.Date.UTC()
	}

	if wantGPS {
		if !st.s.TimeValid {
			return Result{}, gnsserr.ErrUnavailable
		}
		r.GPSSec, r.GPSNsec = st.GPSSeconds()
	}

	if wantPos {
		if !st.s.PosValid {
			return Result{}, gnsserr.ErrUnavailable
		}
		r.Loc = st.s.Loc
	}

	if wantErr {
		// Localization uncertainty estimation is a spec §1 Non-goal:
		// the API reserves the field but the core always reports zero.
		r.Err = 0
	}

	return r, nil
}
