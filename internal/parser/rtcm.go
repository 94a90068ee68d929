package parser

import (
	"github.com/go-gnss/rtcm/rtcm3"
)

// SniffRTCM reports whether buf begins with a complete, frame-delimited
// RTCM3 message, and if so how many bytes it occupies. It never decodes
// message content — full RTCM decoding stays a non-goal per spec §1 — it
// exists only so the frame decoder can recognize and skip RTCM3 traffic a
// U-blox unit may interleave with NMEA/UBX on the same UART, the same
// rtcm3.NewParser/NextFrame pair internal/rtk/processor.go uses for frame
// boundary detection before it goes on to decode message numbers.
func SniffRTCM(buf []byte) (isRTCM bool, consumed int) {
	p := rtcm3.NewParser()
	p.Write(buf)

	frame, err := p.NextFrame()
	if err != nil {
		return false, 0
	}
	// frame.Data is the payload the parser already stripped of RTCM3's
	// framing and CRC24Q trailer; the wire frame adds the 3-byte header
	// (preamble plus 10-bit length) in front and the 3-byte CRC24Q behind.
	return true, 3 + len(frame.Data) + 3
}
