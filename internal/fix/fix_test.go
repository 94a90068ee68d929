package fix

import (
	"errors"
	"testing"

	"github.com/gnssgw/gnss-timebase/gnsserr"
)

func TestCommitAndGetUTC(t *testing.T) {
	st := NewStore()
	d := Date{Year: 2002, Month: 12, Day: 9, Hour: 8, Minute: 35, Second: 59, FracSecond: 0.34}
	st.CommitRMCTime(d)

	res, err := st.Get(true, false, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "2002-12-09T08:35:59.34Z"
	if got := res.UTC.Format("2006-01-02T15:04:05.99Z"); got != want {
		t.Errorf("UTC = %s, want %s", got, want)
	}
}

func TestGetUnavailableBeforeCommit(t *testing.T) {
	st := NewStore()
	if _, err := st.Get(true, false, false, false); !errors.Is(err, gnsserr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestClearTimeMakesUTCUnavailable(t *testing.T) {
	st := NewStore()
	st.CommitRMCTime(Date{Year: 2002, Month: 12, Day: 9})
	st.ClearTime()
	if _, err := st.Get(true, false, false, false); !errors.Is(err, gnsserr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable after ClearTime, got %v", err)
	}
}

func TestGPSSeconds(t *testing.T) {
	st := NewStore()
	st.CommitGPSTime(2200, 12345_678, 500_000)
	sec, nsec := st.GPSSeconds()

	wantSec := int64(2200)*604800 + 12345
	wantNsec := int64(678)*1e6 + 500_000
	if sec != wantSec || nsec != wantNsec {
		t.Errorf("GPSSeconds() = (%d, %d), want (%d, %d)", sec, nsec, wantSec, wantNsec)
	}
}

func TestCommitPositionAndClear(t *testing.T) {
	st := NewStore()
	st.CommitPosition(Location{Lat: 47.285233, Lon: 8.565265, Alt: 499}, 8)

	res, err := st.Get(false, false, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Loc.Lat != 47.285233 || res.Loc.Alt != 499 {
		t.Errorf("unexpected location: %+v", res.Loc)
	}

	st.ClearPosition()
	if _, err := st.Get(false, false, true, false); !errors.Is(err, gnsserr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable after ClearPosition, got %v", err)
	}
}

func TestErrAlwaysZero(t *testing.T) {
	st := NewStore()
	st.CommitRMCTime(Date{Year: 2002, Month: 12, Day: 9})
	res, err := st.Get(true, false, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Err != 0 {
		t.Errorf("Err = %v, want 0 (localization uncertainty is a non-goal)", res.Err)
	}
}

func TestModeDefaultsToNone(t *testing.T) {
	st := NewStore()
	if st.Raw().Mode != ModeNone {
		t.Errorf("default mode = %q, want %q", st.Raw().Mode, ModeNone)
	}
	st.SetMode(ModeDifferential)
	if st.Raw().Mode != ModeDifferential {
		t.Errorf("mode = %q, want %q", st.Raw().Mode, ModeDifferential)
	}
}
