package simulate

import (
	"testing"
	"time"

	"github.com/gnssgw/gnss-timebase/internal/fix"
	"github.com/gnssgw/gnss-timebase/internal/parser"
)

func TestGeneratedRMCParsesCleanly(t *testing.T) {
	g := NewFixGenerator()
	st := fix.NewStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 340_000_000, time.UTC)

	line := g.RMC(now)
	kind := parser.ParseNMEA([]byte(line), len(line), st)
	if kind != parser.NMEARMC {
		t.Fatalf("kind = %v, want NMEARMC for generated sentence %q", kind, line)
	}

	res, err := st.Get(true, false, false, false)
	if err != nil {
		t.Fatalf("unexpected error reading generated fix: %v", err)
	}
	if res.UTC.Hour() != 12 || res.UTC.Minute() != 0 {
		t.Errorf("generated RMC time mismatch: %v", res.UTC)
	}
}

func TestGeneratedGGAParsesCleanly(t *testing.T) {
	g := NewFixGenerator()
	st := fix.NewStore()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	line := g.GGA(now)
	kind := parser.ParseNMEA([]byte(line), len(line), st)
	if kind != parser.NMEAGGA {
		t.Fatalf("kind = %v, want NMEAGGA for generated sentence %q", kind, line)
	}

	res, err := st.Get(false, false, true, false)
	if err != nil {
		t.Fatalf("unexpected error reading generated fix: %v", err)
	}
	if res.Loc.Alt != g.AltM {
		t.Errorf("alt = %d, want %d", res.Loc.Alt, g.AltM)
	}
}

func TestStreamDeliversGeneratedBurst(t *testing.T) {
	g := NewFixGenerator()
	stream, recv, err := NewStream(g)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	defer recv.Close()

	if stream.Port == nil {
		t.Fatal("expected stream.Port to be wired to the receiver")
	}

	buf := make([]byte, 4096)
	n, err := recv.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Error("expected a non-empty generated burst within the first tick")
	}
}

func TestGeneratedNavTimeGPSParsesCleanly(t *testing.T) {
	g := NewFixGenerator()
	st := fix.NewStore()
	now := weekStart(g.GPSWeek).Add(12*time.Hour + 34*time.Minute)

	frame := g.NavTimeGPS(now)
	kind, consumed := parser.ParseUBX(frame, st)
	if kind != parser.UBXNavTimeGPS {
		t.Fatalf("kind = %v, want UBXNavTimeGPS", kind)
	}
	if consumed != len(frame) {
		t.Errorf("consumed = %d, want %d", consumed, len(frame))
	}

	sec, _ := st.GPSSeconds()
	wantSec := int64(g.GPSWeek)*604800 + int64(12*3600+34*60)
	if sec != wantSec {
		t.Errorf("GPSSeconds = %d, want %d", sec, wantSec)
	}
}
