// Package timebase maintains the rolling linear correspondence between the
// concentrator's free-running microsecond counter, civil UTC, and GPS time
// (component D of the GNSS timing core, spec §4.D).
package timebase

import (
	"math"
	"time"

	"github.com/gnssgw/gnss-timebase/gnsserr"
)

const (
	slopeLow  = 0.99999
	slopeHigh = 1.00001
)

// Timespec is a seconds+nanoseconds instant, used for both UTC and GPS time
// so the same arithmetic serves cnt_to_utc/utc_to_cnt and cnt_to_gps/
// gps_to_cnt without duplicating the carry logic.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// add returns t+d with an explicit carry when the nanosecond sum reaches
// 1e9, per spec §4.D.
func (t Timespec) add(d float64) Timespec {
	wholeSec := int64(math.Floor(d))
	fracNsec := int64(math.Round((d - float64(wholeSec)) * 1e9))

	sec := t.Sec + wholeSec
	nsec := t.Nsec + fracNsec
	if nsec >= 1_000_000_000 {
		nsec -= 1_000_000_000
		sec++
	} else if nsec < 0 {
		nsec += 1_000_000_000
		sec--
	}
	return Timespec{Sec: sec, Nsec: nsec}
}

// sub returns t-ref as a float64 number of seconds.
func (t Timespec) sub(ref Timespec) float64 {
	return float64(t.Sec-ref.Sec) + float64(t.Nsec-ref.Nsec)/1e9
}

// Reference is the single live time-base correspondence owned by an
// Estimator: (systime, count_us, utc, gps, xtal_err) from spec §3.
type Reference struct {
	Systime int64 // host wall-clock seconds at last accepted sync; 0 = uninitialized
	CountUs uint32
	UTC     Timespec
	GPS     Timespec
	XtalErr float64
}

// Estimator owns exactly one Reference plus the two-deep aberration
// history spec §3 requires be lifted out of static storage so multiple
// instances can coexist (design note §9).
type Estimator struct {
	ref Reference

	// abHistN1, abHistN2 track whether sync attempts N-1 and N-2 were
	// flagged aberrant. Reset only by constructing a new Estimator.
	abHistN1, abHistN2 bool
}

// NewEstimator returns an uninitialized estimator (systime == 0).
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Reference returns a copy of the current time-base correspondence.
func (e *Estimator) Reference() Reference { return e.ref }

// Sync folds a new GNSS fix into the reference per spec §4.D. systime is
// the host wall-clock second at which the sample was taken.
func (e *Estimator) Sync(systime int64, countUs uint32, utc, gps Timespec) error {
	first := e.ref.Systime == 0

	cntDiff := float64(countUs-e.ref.CountUs) / 1e6 // unsigned wrap is intentional, spec §4.D step 1
	utcDiff := utc.sub(e.ref.UTC)

	aberrant := false
	var slope float64

	if utcDiff == 0 {
		aberrant = true
	} else {
		slope = cntDiff / utcDiff
		if slope <= slopeLow || slope >= slopeHigh {
			aberrant = true
		}
	}

	// The first sync has no prior reference: count_us and utc are both
	// zero, so the computed slope is meaningless. We bypass the sanity
	// check on the first call and seed xtal_err from the source's actual
	// behavior (commit the computed slope) rather than forcing 1.0 — see
	// DESIGN.md for the open-question decision.
	if first {
		// The first sync has no prior reference to judge a slope against
		// (count_us and utc both zero), so it always commits — but the
		// aberration history still records whatever the sanity check
		// would have concluded, so a bad first fix still counts toward
		// a forced re-anchor later.
		e.commit(systime, countUs, utc, gps, slope)
		e.shiftHistory(aberrant)
		return nil
	}

	if !aberrant {
		e.commit(systime, countUs, utc, gps, slope)
		e.shiftHistory(false)
		return nil
	}

	if e.abHistN1 && e.abHistN2 {
		newXtal := e.ref.XtalErr
		if newXtal <= slopeLow || newXtal >= slopeHigh {
			newXtal = 1.0
		}
		e.commit(systime, countUs, utc, gps, newXtal)
		e.shiftHistory(true)
		return nil
	}

	e.shiftHistory(true)
	return gnsserr.ErrAberrant
}

func (e *Estimator) commit(systime int64, countUs uint32, utc, gps Timespec, xtalErr float64) {
	e.ref.Systime = systime
	e.ref.CountUs = countUs
	e.ref.UTC = utc
	e.ref.GPS = gps
	e.ref.XtalErr = xtalErr
}

func (e *Estimator) shiftHistory(aberrant bool) {
	e.abHistN2 = e.abHistN1
	e.abHistN1 = aberrant
}

// ready reports whether the reference is initialized and xtal_err is
// within the sane window; every conversion requires this.
func (e *Estimator) ready() error {
	if e.ref.Systime == 0 {
		return gnsserr.ErrUninitialized
	}
	if e.ref.XtalErr <= slopeLow || e.ref.XtalErr >= slopeHigh {
		return gnsserr.ErrXtalOutOfRange
	}
	return nil
}

// CntToUTC converts a concentrator counter sample to UTC.
func (e *Estimator) CntToUTC(c uint32) (Timespec, error) {
	if err := e.ready(); err != nil {
		return Timespec{}, err
	}
	// c-e.ref.CountUs wraps as uint32; reinterpret the wrapped difference as
	// signed so a sample taken before the reference yields a negative
	// delta instead of a ~4295s positive one (spec §4.D's ~35 minute
	// meaningless-result threshold is exactly half this wrap period).
	deltaSec := float64(int32(c-e.ref.CountUs)) / (1e6 * e.ref.XtalErr)
	return e.ref.UTC.add(deltaSec), nil
}

// UTCToCnt converts a UTC instant to a concentrator counter value.
func (e *Estimator) UTCToCnt(t Timespec) (uint32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	deltaSec := t.sub(e.ref.UTC)
	return roundToU32(e.ref.CountUs, deltaSec*1e6*e.ref.XtalErr), nil
}

// CntToGPS converts a concentrator counter sample to GPS time.
func (e *Estimator) CntToGPS(c uint32) (Timespec, error) {
	if err := e.ready(); err != nil {
		return Timespec{}, err
	}
	deltaSec := float64(int32(c-e.ref.CountUs)) / (1e6 * e.ref.XtalErr)
	return e.ref.GPS.add(deltaSec), nil
}

// GPSToCnt converts a GPS instant to a concentrator counter value.
func (e *Estimator) GPSToCnt(t Timespec) (uint32, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	deltaSec := t.sub(e.ref.GPS)
	return roundToU32(e.ref.CountUs, deltaSec*1e6*e.ref.XtalErr), nil
}

// roundToU32 adds offsetUs (a float64 number of microseconds, possibly
// negative) to base with unsigned 32-bit modular wrap, rounding to the
// nearest microsecond.
func roundToU32(base uint32, offsetUs float64) uint32 {
	rounded := int64(offsetUs)
	if offsetUs-float64(rounded) >= 0.5 {
		rounded++
	} else if offsetUs-float64(rounded) <= -0.5 {
		rounded--
	}
	return uint32(int64(base) + rounded)
}

// FromTime converts a time.Time to the Timespec shape used throughout this
// package.
func FromTime(t time.Time) Timespec {
	return Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// GPSEpoch is GPS time zero, 1980-01-06T00:00:00Z.
var GPSEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

// FromGPSSeconds builds a Timespec from GPS-seconds-since-epoch + nanoseconds,
// the representation fix.Store.GPSSeconds produces.
func FromGPSSeconds(sec, nsec int64) Timespec {
	return Timespec{Sec: sec, Nsec: nsec}
}
