// Package simulate synthesizes believable GNSS byte streams for tests and
// demos, adapted from the teacher's gnss_receiver.go UBX-NAV-PVT generator:
// the same checksum routine and little-endian field layout, retargeted to
// emit RMC, GGA, and NAV-TIMEGPS frames instead of NAV-PVT.
package simulate

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bramburn/gnssgo/pkg/gnssgo"
)

// FixGenerator produces a mixed NMEA+UBX byte stream representing one GNSS
// fix, driven off a caller-supplied time and position.
type FixGenerator struct {
	Lat, Lon float64
	AltM     int
	NumSat   int
	GPSWeek  int16
}

// NewFixGenerator returns a generator seeded with a plausible fix.
func NewFixGenerator() *FixGenerator {
	return &FixGenerator{Lat: 47.2852, Lon: 8.5653, AltM: 499, NumSat: 8, GPSWeek: 2200}
}

// RMC renders an autonomous-fix RMC sentence for t, with a correct
// checksum.
func (g *FixGenerator) RMC(t time.Time) string {
	body := fmt.Sprintf("GPRMC,%s,A,%s,%s,0.004,77.52,%s,,,A",
		hhmmss(t), ddmm(g.Lat, true), ddmm(g.Lon, false), ddmmyy(t))
	return frameNMEA(body)
}

// GGA renders a GGA sentence for t.
func (g *FixGenerator) GGA(t time.Time) string {
	body := fmt.Sprintf("GPGGA,%s,%s,%s,1,%02d,1.01,%d.0,M,48.0,M,,",
		hhmmss(t), ddmm(g.Lat, true), ddmm(g.Lon, false), g.NumSat, g.AltM)
	return frameNMEA(body)
}

// NavTimeGPS renders a UBX NAV-TIMEGPS frame with towValid and weekValid
// both set, derived from t.
func (g *FixGenerator) NavTimeGPS(t time.Time) []byte {
	sinceWeek := t.Sub(weekStart(g.GPSWeek))
	itow := uint32(sinceWeek.Milliseconds())

	payload := make([]byte, 16)
	binary.LittleEndian.PutUint32(payload[0:4], itow)
	binary.LittleEndian.PutUint32(payload[4:8], 0) // fTOW
	binary.LittleEndian.PutUint16(payload[8:10], uint16(g.GPSWeek))
	payload[10] = 0    // leapS
	payload[11] = 0x03 // towValid | weekValid
	binary.LittleEndian.PutUint32(payload[12:16], 50) // tAcc

	msg := make([]byte, 0, 6+len(payload)+2)
	msg = append(msg, 0xB5, 0x62, 0x01, 0x20)
	msg = append(msg, byte(len(payload)), byte(len(payload)>>8))
	msg = append(msg, payload...)

	ckA, ckB := fletcher(msg[2:])
	msg = append(msg, ckA, ckB)
	return msg
}

// Receiver is a channel-backed io.ReadWriteCloser standing in for a real
// GNSS device, the same shape the teacher's GNSSReceiver (gnss_receiver.go)
// uses to back a gnssgo.Stream: a 1Hz ticker pushes one combined
// RMC+GGA+NAV-TIMEGPS burst per tick, and Read delivers whatever the
// consumer hasn't drained yet.
type Receiver struct {
	gen *FixGenerator

	mu        sync.Mutex
	running   bool
	dataQueue chan []byte
	stopChan  chan struct{}
}

// NewReceiver returns a stopped receiver generating fixes from gen.
func NewReceiver(gen *FixGenerator) *Receiver {
	return &Receiver{
		gen:       gen,
		dataQueue: make(chan []byte, 16),
		stopChan:  make(chan struct{}),
	}
}

// Start begins the 1Hz generation loop.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("simulate: receiver already running")
	}
	r.running = true
	go r.generateLoop()
	return nil
}

// Stop halts generation; Read returns io.EOF once the queue drains.
func (r *Receiver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stopChan)
}

// Read delivers the next generated burst, blocking up to one second.
func (r *Receiver) Read(p []byte) (int, error) {
	select {
	case data, ok := <-r.dataQueue:
		if !ok {
			return 0, io.EOF
		}
		return copy(p, data), nil
	case <-time.After(1 * time.Second):
		return 0, fmt.Errorf("simulate: timeout waiting for generated data")
	}
}

// Write implements io.Writer but does nothing: the simulated receiver has
// no configuration surface to push CFG-MSG commands into.
func (r *Receiver) Write(p []byte) (int, error) { return len(p), nil }

// Close stops generation.
func (r *Receiver) Close() error {
	r.Stop()
	return nil
}

func (r *Receiver) generateLoop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopChan:
			close(r.dataQueue)
			return
		case t := <-ticker.C:
			var burst []byte
			burst = append(burst, []byte(r.gen.RMC(t))...)
			burst = append(burst, []byte(r.gen.GGA(t))...)
			burst = append(burst, r.gen.NavTimeGPS(t)...)
			r.dataQueue <- burst
		}
	}
}

// NewStream wraps a Receiver in a gnssgo.Stream, the same manual
// Type/Mode/State/Port construction the teacher's CreateGNSSStream used to
// feed a simulated receiver into RTK integration tests without a real
// serial device present.
func NewStream(gen *FixGenerator) (*gnssgo.Stream, *Receiver, error) {
	recv := NewReceiver(gen)
	if err := recv.Start(); err != nil {
		return nil, nil, err
	}

	stream := &gnssgo.Stream{}
	stream.InitStream()
	stream.Type = gnssgo.STR_SERIAL
	stream.Mode = gnssgo.STR_MODE_R
	stream.State = 1 // open
	stream.Port = recv

	return stream, recv, nil
}

// weekStart is a rough anchor: GPS week 0 began at the GPS epoch, and every
// week is exactly 604800 seconds, so this is exact regardless of leap
// seconds (GPS time doesn't observe them).
func weekStart(week int16) time.Time {
	epoch := time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)
	return epoch.Add(time.Duration(week) * 7 * 24 * time.Hour)
}

func fletcher(region []byte) (a, b byte) {
	for _, c := range region {
		a += c
		b += a
	}
	return a, b
}

func frameNMEA(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X\r\n", body, sum)
}

func hhmmss(t time.Time) string {
	return fmt.Sprintf("%02d%02d%02d.%02d", t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/10_000_000)
}

func ddmmyy(t time.Time) string {
	return fmt.Sprintf("%02d%02d%02d", t.Day(), int(t.Month()), t.Year()%100)
}

// ddmm renders a decimal-degree coordinate in NMEA DDMM.MMMM / DDDMM.MMMM
// form plus its hemisphere letter.
func ddmm(value float64, isLat bool) string {
	hemi := byte('N')
	if isLat && value < 0 {
		hemi = 'S'
	}
	if !isLat {
		hemi = 'E'
		if value < 0 {
			hemi = 'W'
		}
	}
	v := value
	if v < 0 {
		v = -v
	}
	deg := int(v)
	min := (v - float64(deg)) * 60

	degDigits := 2
	if !isLat {
		degDigits = 3
	}
	return fmt.Sprintf("%0*d%07.4f,%c", degDigits, deg, min, hemi)
}
