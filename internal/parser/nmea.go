package parser

import (
	"strconv"
	"strings"

	"github.com/gnssgw/gnss-timebase/internal/fix"
)

// NMEAKind classifies the outcome of a single ParseNMEA call.
type NMEAKind int

const (
	NMEARMC NMEAKind = iota
	NMEAGGA
	// NMEAIgnored is a recognized RMC/GGA talker whose field count didn't
	// match what this core expects, or any other sentence type.
	NMEAIgnored
	// NMEAInvalid is a structurally broken sentence: missing '$', missing
	// or mismatched checksum.
	NMEAInvalid
	// NMEAUnknown is a buffer outside the accepted length window.
	NMEAUnknown
)

// Field counts below exclude the sentence-id token (e.g. "$GPRMC"), which
// ParseNMEA strips before splitting. Spec §4.B's "13 or 14 tokens" / "15
// tokens" figures count the sentence-id too.
const (
	rmcFieldsShort = 12
	rmcFieldsLong  = 13
	ggaFieldCount  = 14
)

// ParseNMEA validates and classifies buf[:n] as an RMC or GGA sentence,
// mutating st on success exactly per spec §4.B. It never scans past
// position 0 for the leading '$': framing is the caller's job.
func ParseNMEA(buf []byte, n int, st *fix.Store) NMEAKind {
	if n < 8 || n > 255 {
		return NMEAUnknown
	}
	sentence := string(buf[:n])

	if !checksumOK(sentence) {
		return NMEAInvalid
	}

	star := strings.IndexByte(sentence, '*')
	body := sentence[:star]

	if len(body) < 6 || body[0] != '$' {
		return NMEAInvalid
	}

	talker := body[:6] // "$G?RMC" / "$G?GGA" — fixed 6-char label window
	isRMC := talker[1] == 'G' && talker[3] == 'R' && talker[4] == 'M' && talker[5] == 'C'
	isGGA := talker[1] == 'G' && talker[3] == 'G' && talker[4] == 'G' && talker[5] == 'A'

	if !isRMC && !isGGA {
		// Any other NMEA sentence is ignored, not treated as malformed.
		return NMEAIgnored
	}
	if len(body) < 7 {
		return NMEAIgnored
	}

	fields := splitFields(body[7:]) // skip "$G?XXX" plus the comma

	switch {
	case isRMC:
		if len(fields) != rmcFieldsShort && len(fields) != rmcFieldsLong {
			return NMEAIgnored
		}
		parseRMC(fields, st)
		return NMEARMC
	default: // isGGA
		if len(fields) != ggaFieldCount {
			return NMEAIgnored
		}
		parseGGA(fields, st)
		return NMEAGGA
	}
}

// checksumOK verifies the XOR checksum between '$' and '*' against the two
// uppercase-hex characters following '*'.
func checksumOK(sentence string) bool {
	if len(sentence) < 1 || sentence[0] != '$' {
		return false
	}
	star := strings.IndexByte(sentence, '*')
	if star < 0 || star+2 >= len(sentence) {
		return false
	}

	var sum byte
	for i := 1; i < star; i++ {
		sum ^= sentence[i]
	}

	hi, ok1 := hexNibble(sentence[star+1])
	lo, ok2 := hexNibble(sentence[star+2])
	if !ok1 || !ok2 {
		return false
	}
	return sum == hi<<4|lo
}

// hexNibble accepts only uppercase A-F per the wire format's convention.
func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// splitFields splits on commas without mutating the input, unlike the
// scratch-copy-and-terminate approach of the original C decoder (design
// note §9).
func splitFields(s string) []string {
	return strings.Split(s, ",")
}

// parseRMC implements spec §4.B step 5. fields excludes the sentence id.
func parseRMC(fields []string, st *fix.Store) {
	modeIdx := 11 // token 12 overall (0-indexed after sentence id is removed)
	mode := fix.ModeNone
	if modeIdx < len(fields) && len(fields[modeIdx]) == 1 {
		switch fields[modeIdx][0] {
		case 'A':
			mode = fix.ModeAutonomous
		case 'D':
			mode = fix.ModeDifferential
		}
	}
	st.SetMode(mode)

	timeOK, d := scanRMCTime(fields[0])
	dateOK := scanRMCDate(fields[8], &d)

	if timeOK && dateOK && (mode == fix.ModeAutonomous || mode == fix.ModeDifferential) {
		st.CommitRMCTime(d)
	} else {
		st.ClearTime()
	}
}

// scanRMCTime parses "HHMMSS.ss" (or "HHMMSS"). It does not touch Year/
// Month/Day, which scanRMCDate fills in separately.
func scanRMCTime(tok string) (bool, fix.Date) {
	var d fix.Date
	if len(tok) < 6 {
		return false, d
	}
	hh, err1 := strconv.Atoi(tok[0:2])
	mm, err2 := strconv.Atoi(tok[2:4])
	secWhole, err3 := strconv.Atoi(tok[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return false, d
	}
	frac := 0.0
	if len(tok) > 6 && tok[6] == '.' {
		f, err := strconv.ParseFloat(tok[6:], 64)
		if err != nil {
			return false, d
		}
		frac = f
	}
	d.Hour, d.Minute, d.Second, d.FracSecond = hh, mm, secWhole, frac
	return true, d
}

// scanRMCDate parses "DDMMYY" into d in place.
func scanRMCDate(tok string, d *fix.Date) bool {
	if len(tok) != 6 {
		return false
	}
	dd, err1 := strconv.Atoi(tok[0:2])
	mon, err2 := strconv.Atoi(tok[2:4])
	yy, err3 := strconv.Atoi(tok[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	d.Day, d.Month, d.Year = dd, mon, 2000+yy
	return true
}

// parseGGA implements spec §4.B step 6. fields excludes the sentence id.
func parseGGA(fields []string, st *fix.Store) {
	numSat, errSat := strconv.Atoi(fields[6])
	lat, okLat := scanCoordinate(fields[1], fields[2], 2)
	lon, okLon := scanCoordinate(fields[3], fields[4], 3)
	altF, errAlt := strconv.ParseFloat(fields[8], 64)

	if errSat != nil || !okLat || !okLon || errAlt != nil {
		st.ClearPosition()
		return
	}

	st.CommitPosition(fix.Location{Lat: lat, Lon: lon, Alt: int(altF)}, numSat)
}

// scanCoordinate parses a coordinate field of the form
// "{degDigits}{mm.mmmm}" plus a hemisphere letter, returning a signed
// decimal-degrees value. degDigits is 2 for latitude, 3 for longitude.
func scanCoordinate(coordTok, hemiTok string, degDigits int) (float64, bool) {
	if len(coordTok) <= degDigits || len(hemiTok) != 1 {
		return 0, false
	}
	deg, err1 := strconv.ParseFloat(coordTok[:degDigits], 64)
	min, err2 := strconv.ParseFloat(coordTok[degDigits:], 64)
	if err1 != nil || err2 != nil {
		return 0, false
	}

	value := deg + min/60.0

	switch hemiTok[0] {
	case 'N', 'E':
		// positive
	case 'S', 'W':
		value = -value
	default:
		return 0, false
	}

	return value, true
}
