// Package serialsession is the GNSS timing core's serial session manager
// (component A, spec §4.A): it opens/configures/restores a byte-oriented
// device and pushes the one-shot UBX configuration command that enables
// NAV-TIMEGPS output.
package serialsession

import (
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/gnssgw/gnss-timebase/internal/fix"
	"github.com/gnssgw/gnss-timebase/gnsserr"
	"github.com/gnssgw/gnss-timebase/logx"
)

// fixedBaud is the line rate the session manager always configures,
// regardless of the baud argument passed to Enable — the caller's value is
// accepted but reserved, per spec §4.A.
const fixedBaud = 115200

// ublox7FamilyPrefix identifies the supported U-blox 7 receiver generation.
// A family string that doesn't carry this prefix only produces a warning;
// the session still proceeds.
const ublox7FamilyPrefix = "ublox7"

// cfgMsgEnableNavTimeGPS is the fixed 16-byte UBX CFG-MSG command that
// enables NAV-TIMEGPS on the serial output, pushed once at the end of
// Enable. Bytes per spec §6.
var cfgMsgEnableNavTimeGPS = []byte{
	0xB5, 0x62, 0x06, 0x01, 0x08, 0x00, 0x01, 0x20, 0x00, 0x01, 0x01, 0x00, 0x00, 0x00, 0x32, 0x94,
}

// Port is the minimal byte-source contract Enable configures. It mirrors
// the subset of go.bug.st/serial's serial.Port this core needs, so a fake
// can stand in for tests the way the teacher's internal/port.SerialPort
// interface wraps the same library.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// opener abstracts serial.Open so tests can substitute a fake port without
// a real device present.
type opener func(path string, mode *serial.Mode) (Port, error)

func defaultOpener(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Stats are informational counters kept since Enable; the estimator and
// parser never consult them. See SPEC_FULL.md's "startup self-test
// counter" supplement.
type Stats struct {
	UBXNavTimeGPSFrames int
	NMEAFixes           int
}

// Handle represents an open session with a GNSS device.
type Handle struct {
	port  Port
	store *fix.Store
	log   logx.Logger
	stats Stats
}

// Store returns the fix snapshot store this session's caller should feed
// into the frame decoder.
func (h *Handle) Store() *fix.Store { return h.store }

// Stats returns a copy of the session's informational counters.
func (h *Handle) Stats() Stats { return h.stats }

// NoteUBXNavTimeGPS and NoteNMEAFix let a caller driving ParseUBX/ParseNMEA
// report back into the session's counters; the session itself never reads
// the byte stream, so it can't observe these on its own.
func (h *Handle) NoteUBXNavTimeGPS() { h.stats.UBXNavTimeGPSFrames++ }
func (h *Handle) NoteNMEAFix()       { h.stats.NMEAFixes++ }

// Read/Write pass through to the underlying port, matching spec §5: the
// blocking read belongs to the caller, not the core.
func (h *Handle) Read(p []byte) (int, error)  { return h.port.Read(p) }
func (h *Handle) Write(p []byte) (int, error) { return h.port.Write(p) }

// Enable opens path for read/write at a fixed 115200 8N1 raw configuration
// and pushes the CFG-MSG command enabling NAV-TIMEGPS. baud is accepted but
// reserved — the line rate is always fixedBaud, per spec §4.A.
func Enable(path, family string, baud int, log logx.Logger) (*Handle, error) {
	return enableWith(defaultOpener, path, family, baud, log)
}

func enableWith(open opener, path, family string, baud int, log logx.Logger) (*Handle, error) {
	if log == nil {
		log = logx.Discard()
	}
	_ = baud // reserved: the line rate is fixed below regardless of caller input

	checkFamily(family, log)

	mode := &serial.Mode{
		BaudRate: fixedBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := open(path, mode)
	if err != nil {
		log.Errorf("opening %s: %v", path, err)
		return nil, gnsserr.ErrDeviceIO
	}

	h := &Handle{
		port:  port,
		store: fix.NewStore(),
		log:   log,
	}

	n, err := port.Write(cfgMsgEnableNavTimeGPS)
	if err != nil || n != len(cfgMsgEnableNavTimeGPS) {
		// A partial or failed write is logged and swallowed, per spec §7:
		// the device usually accepts its defaults, and a failed config
		// push is visible later via the absence of NAV-TIMEGPS frames.
		log.Warnf("CFG-MSG enable write incomplete for %s: wrote %d of %d bytes, err=%v",
			path, n, len(cfgMsgEnableNavTimeGPS), err)
	}

	return h, nil
}

// Disable restores and closes the device. Guaranteed to release the
// underlying descriptor even if the caller passed a handle from a failed
// Enable — the port field is always non-nil on a handle Enable returned.
func Disable(h *Handle) error {
	if h == nil || h.port == nil {
		return nil
	}
	if err := h.port.Close(); err != nil {
		h.log.Errorf("closing device: %v", err)
		return gnsserr.ErrDeviceIO
	}
	return nil
}

// checkFamily logs a warning, but never fails Enable, when family is empty
// or doesn't carry the U-blox 7 generation prefix this core supports.
func checkFamily(family string, log logx.Logger) {
	if len(family) >= len(ublox7FamilyPrefix) && family[:len(ublox7FamilyPrefix)] == ublox7FamilyPrefix {
		return
	}
	log.Warnf("unrecognized GNSS family %q, expected prefix %q; proceeding anyway", family, ublox7FamilyPrefix)
}

// ListPorts enumerates candidate serial devices. Enable does not consult
// it; an empty family argument only produces checkFamily's warning.
func ListPorts() ([]*enumerator.PortDetails, error) {
	return enumerator.GetDetailedPortsList()
}

// ProbeFamily inspects a port's USB product string for the U-blox 7
// generation marker and returns ublox7FamilyPrefix on a match. Enable does
// not call it.
func ProbeFamily(details *enumerator.PortDetails) string {
	if details == nil || !details.IsUSB {
		return ""
	}
	if strings.Contains(strings.ToLower(details.Product), "u-blox 7") {
		return ublox7FamilyPrefix
	}
	return ""
}
