package parser

import (
	"encoding/binary"

	"github.com/gnssgw/gnss-timebase/internal/fix"
)

// UBXKind classifies the outcome of a single ParseUBX call.
type UBXKind int

const (
	// UBXNavTimeGPS is a NAV-TIMEGPS frame; the fix store may or may not
	// have been updated depending on the valid bitfield.
	UBXNavTimeGPS UBXKind = iota
	// UBXIgnored is a well-formed frame this core doesn't act on, or a
	// buffer too short to plausibly be a UBX frame at all.
	UBXIgnored
	// UBXInvalid is a frame whose Fletcher checksum did not match.
	UBXInvalid
	// UBXIncomplete is a frame whose declared length exceeds the bytes
	// available; Consumed reports the total length once complete.
	UBXIncomplete
)

const (
	ubxSync1 = 0xB5
	ubxSync2 = 0x62

	classNAV = 0x01
	idNavTimeGPS = 0x20

	classACK = 0x05
	idAckNak = 0x00
	idAckAck = 0x01
)

// ParseUBX classifies buf as a UBX frame and, for a valid NAV-TIMEGPS frame
// with both towValid and weekValid set, commits the decoded time into st.
// It never scans for sync bytes beyond position 0: framing is the caller's
// responsibility (spec §6).
//
// Consumed reports, for UBXIncomplete, the total frame length the caller
// should wait for; for every other kind it reports the number of bytes
// actually belonging to the frame (0 for UBXIgnored on a too-short buffer).
func ParseUBX(buf []byte, st *fix.Store) (kind UBXKind, consumed int) {
	if len(buf) < 8 {
		return UBXIgnored, 0
	}
	if buf[0] != ubxSync1 || buf[1] != ubxSync2 {
		return UBXIgnored, 0
	}

	payloadLen := int(binary.LittleEndian.Uint16(buf[4:6]))
	msgSize := 6 + payloadLen + 2

	if len(buf) < msgSize {
		return UBXIncomplete, msgSize
	}

	if !ubxChecksumOK(buf[2:6+payloadLen], buf[msgSize-2], buf[msgSize-1]) {
		return UBXInvalid, msgSize
	}

	class, id := buf[2], buf[3]

	switch {
	case class == classNAV && id == idNavTimeGPS:
		decodeNavTimeGPS(buf[6:6+payloadLen], st)
		return UBXNavTimeGPS, msgSize
	case class == classACK && (id == idAckNak || id == idAckAck):
		return UBXIgnored, msgSize
	default:
		return UBXIgnored, msgSize
	}
}

// ubxChecksumOK computes the 8-bit Fletcher checksum over region (class
// through the last payload byte) and compares it to the two trailing bytes.
func ubxChecksumOK(region []byte, ckA, ckB byte) bool {
	var a, b byte
	for _, c := range region {
		a += c
		b += a
	}
	return a == ckA && b == ckB
}

// decodeNavTimeGPS decodes the fields of a NAV-TIMEGPS payload this core
// cares about (iTOW, fTOW, week, valid) and, if both towValid (bit 0) and
// weekValid (bit 1) are set, commits the result into st. leapS and tAcc are
// part of the wire payload but outside this core's data model.
func decodeNavTimeGPS(payload []byte, st *fix.Store) {
	if len(payload) < 12 {
		return
	}
	valid := payload[11]
	const towValidBit = 1 << 0
	const weekValidBit = 1 << 1
	if valid&towValidBit == 0 || valid&weekValidBit == 0 {
		return
	}

	itow := binary.LittleEndian.Uint32(payload[0:4])
	ftow := int32(binary.LittleEndian.Uint32(payload[4:8]))
	week := int16(binary.LittleEndian.Uint16(payload[8:10]))

	st.CommitGPSTime(week, itow, ftow)
}
