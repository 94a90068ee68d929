package parser

import (
	"testing"

	"github.com/gnssgw/gnss-timebase/internal/fix"
)

func TestParseNMEARMCAutonomousFix(t *testing.T) {
	st := fix.NewStore()
	line := "$GPRMC,083559.34,A,4717.1140,N,00833.9161,E,0.004,77.52,091202,,,A*56\r\n"

	kind := ParseNMEA([]byte(line), len(line), st)
	if kind != NMEARMC {
		t.Fatalf("kind = %v, want NMEARMC", kind)
	}

	res, err := st.Get(true, false, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "2002-12-09T08:35:59.34Z"
	if got := res.UTC.Format("2006-01-02T15:04:05.99Z"); got != want {
		t.Errorf("UTC = %s, want %s", got, want)
	}
}

func TestParseNMEARMCNoFix(t *testing.T) {
	st := fix.NewStore()
	line := "$GPRMC,083559.34,V,,,,,,,091202,,,N*70\r\n"

	kind := ParseNMEA([]byte(line), len(line), st)
	if kind != NMEARMC {
		t.Fatalf("kind = %v, want NMEARMC", kind)
	}
	if _, err := st.Get(true, false, false, false); err == nil {
		t.Error("expected time to stay unavailable when mode is 'N'")
	}
}

func TestParseNMEAGGA(t *testing.T) {
	st := fix.NewStore()
	line := "$GPGGA,083559.34,4717.1140,N,00833.9161,E,1,08,1.01,499.6,M,48.0,M,,*59\r\n"

	kind := ParseNMEA([]byte(line), len(line), st)
	if kind != NMEAGGA {
		t.Fatalf("kind = %v, want NMEAGGA", kind)
	}

	res, err := st.Get(false, false, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if abs(res.Loc.Lat-47.285233) > 1e-5 {
		t.Errorf("lat = %v, want ~47.285233", res.Loc.Lat)
	}
	if abs(res.Loc.Lon-8.565268) > 1e-5 {
		t.Errorf("lon = %v, want ~8.565268", res.Loc.Lon)
	}
	if res.Loc.Alt != 499 {
		t.Errorf("alt = %d, want 499 (truncated from 499.6)", res.Loc.Alt)
	}
}

func TestParseNMEABadChecksum(t *testing.T) {
	st := fix.NewStore()
	line := "$GPRMC,083559.34,A,4717.1140,N,00833.9161,E,0.004,77.52,091202,,,A*00\r\n"

	kind := ParseNMEA([]byte(line), len(line), st)
	if kind != NMEAInvalid {
		t.Errorf("kind = %v, want NMEAInvalid", kind)
	}
}

func TestParseNMEAOtherSentenceIgnored(t *testing.T) {
	st := fix.NewStore()
	// $GPVTG — any checksum-valid, non-RMC/GGA sentence.
	line := "$GPVTG,77.52,T,,,0.004,N,0.007,K,A*44\r\n"

	kind := ParseNMEA([]byte(line), len(line), st)
	if kind != NMEAIgnored {
		t.Errorf("kind = %v, want NMEAIgnored", kind)
	}
}

func TestParseNMEATooShortIsUnknown(t *testing.T) {
	st := fix.NewStore()
	kind := ParseNMEA([]byte("$G*"), 3, st)
	if kind != NMEAUnknown {
		t.Errorf("kind = %v, want NMEAUnknown", kind)
	}
}

func TestParseNMEAWrongFieldCountIgnored(t *testing.T) {
	st := fix.NewStore()
	line := "$GPRMC,083559.34,A,4717.1140,N*40\r\n"
	kind := ParseNMEA([]byte(line), len(line), st)
	if kind != NMEAIgnored {
		t.Errorf("kind = %v, want NMEAIgnored (4 fields after the sentence id)", kind)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
