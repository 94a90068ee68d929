// Command gnss-timebase-demo wires a real GNSS receiver into the timing
// core end to end: it opens a serial port, feeds every byte through the
// frame decoder, and prints the reconciled hardware-counter/UTC/GPS
// relationship each time a sync succeeds.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gnssgw/gnss-timebase/internal/fix"
	"github.com/gnssgw/gnss-timebase/internal/parser"
	"github.com/gnssgw/gnss-timebase/internal/serialsession"
	"github.com/gnssgw/gnss-timebase/internal/timebase"
	"github.com/gnssgw/gnss-timebase/logx"
)

func main() {
	lg := logx.New("gnss-timebase: ")

	portName := selectPort()
	if portName == "" {
		log.Fatal("No port selected. Exiting.")
	}

	fmt.Printf("Opening %s at fixed 115200 8N1...\n", portName)
	h, err := serialsession.Enable(portName, "ublox7", 115200, lg)
	if err != nil {
		log.Fatalf("enabling GNSS session on %s: %v", portName, err)
	}
	defer serialsession.Disable(h)

	est := timebase.NewEstimator()
	sat := parser.NewSatelliteView(lg)
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 512)

	for {
		n, err := h.Read(chunk)
		if err != nil {
			log.Fatalf("reading from device: %v", err)
		}
		buf = append(buf, chunk[:n]...)
		buf = drain(buf, h, est, sat, lg)
	}
}

// drain consumes as many complete frames from buf as it can find, feeding
// UBX NAV-TIMEGPS updates into est, logging each accepted reference update,
// and handing every NMEA line that is not an RMC/GGA fix to sat for its
// GSA/GSV diagnostic logging. It returns the unconsumed remainder.
func drain(buf []byte, h *serialsession.Handle, est *timebase.Estimator, sat *parser.SatelliteView, lg logx.Logger) []byte {
	for len(buf) > 0 {
		if isRTCM, consumed := parser.SniffRTCM(buf); isRTCM {
			if consumed == 0 {
				break
			}
			buf = buf[consumed:]
			continue
		}

		if buf[0] == 0xB5 {
			kind, consumed := parser.ParseUBX(buf, h.Store())
			if kind == parser.UBXIncomplete {
				break
			}
			if consumed == 0 {
				buf = buf[1:]
				continue
			}
			if kind == parser.UBXNavTimeGPS {
				h.NoteUBXNavTimeGPS()
				syncFromStore(h.Store(), est, lg)
			}
			buf = buf[consumed:]
			continue
		}

		nl := indexByte(buf, '\n')
		if nl < 0 {
			break
		}
		line := buf[:nl+1]
		kind := parser.ParseNMEA(line, len(line), h.Store())
		if kind == parser.NMEARMC || kind == parser.NMEAGGA {
			h.NoteNMEAFix()
		} else {
			// Not an RMC/GGA fix, but may still be a GSA/GSV diagnostic
			// sentence; SatelliteView.Observe no-ops on anything else.
			sat.Observe(strings.TrimRight(string(line), "\r\n"))
		}
		buf = buf[nl+1:]
	}
	return buf
}

func syncFromStore(st *fix.Store, est *timebase.Estimator, lg logx.Logger) {
	res, err := st.Get(true, true, false, false)
	if err != nil {
		return
	}
	utc := timebase.FromTime(res.UTC)
	gps := timebase.FromGPSSeconds(res.GPSSec, res.GPSNsec)
	if err := est.Sync(time.Now().Unix(), 0, utc, gps); err != nil {
		lg.Warnf("sync rejected: %v", err)
		return
	}
	ref := est.Reference()
	lg.Debugf("reference updated: xtal_err=%.6f utc=%d.%09d gps=%d.%09d",
		ref.XtalErr, ref.UTC.Sec, ref.UTC.Nsec, ref.GPS.Sec, ref.GPS.Nsec)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func selectPort() string {
	ports, err := serialsession.ListPorts()
	if err != nil {
		log.Fatalf("listing serial ports: %v", err)
	}
	if len(ports) == 0 {
		log.Fatal("No serial ports found. Please check your connections.")
	}
	if len(ports) == 1 {
		fmt.Printf("Only one port available. Using %s\n", ports[0].Name)
		return ports[0].Name
	}

	fmt.Println("Available serial ports:")
	for i, d := range ports {
		info := fmt.Sprintf("%d: %s", i+1, d.Name)
		if d.IsUSB {
			info += fmt.Sprintf(" [USB: VID:%s PID:%s %s, family=%s]",
				d.VID, d.PID, d.Product, serialsession.ProbeFamily(d))
		}
		fmt.Println(info)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter port number (or 0 to exit): ")
		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(input)

		var selection int
		if _, err := fmt.Sscanf(input, "%d", &selection); err == nil {
			if selection == 0 {
				return ""
			}
			if selection > 0 && selection <= len(ports) {
				return ports[selection-1].Name
			}
		}
		fmt.Println("Invalid selection. Please try again.")
	}
}
