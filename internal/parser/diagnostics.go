package parser

import (
	"github.com/adrianmo/go-nmea"

	"github.com/gnssgw/gnss-timebase/logx"
)

// SatelliteView is a supplementary, logging-only collaborator. It decodes
// GSA/GSV sentences — which ParseNMEA intentionally ignores, since they
// feed no field of the fix snapshot — using the adrianmo/go-nmea library
// rather than hand-rolling yet another field splitter for sentences whose
// exact values this core never needs to get precisely right.
//
// SatelliteView never touches a fix.Store: it only logs. Wiring it in is
// optional and has no bearing on time_valid/pos_valid.
type SatelliteView struct {
	log logx.Logger
}

// NewSatelliteView returns a diagnostics-only GSA/GSV observer.
func NewSatelliteView(log logx.Logger) *SatelliteView {
	if log == nil {
		log = logx.Discard()
	}
	return &SatelliteView{log: log}
}

// Observe parses a single line (sans CRLF) and, if it's a GSA or GSV
// sentence, logs satellite-in-view and DOP diagnostics. Any other sentence
// type, or a parse failure, is silently ignored — this is best-effort
// telemetry, not part of the fix state machine.
func (v *SatelliteView) Observe(line string) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return
	}

	switch sentence.DataType() {
	case nmea.TypeGSA:
		gsa := sentence.(nmea.GSA)
		v.log.Debugf("gsa: fix_type=%s hdop=%.2f pdop=%.2f vdop=%.2f",
			gsa.FixType, gsa.HDOP, gsa.PDOP, gsa.VDOP)
	case nmea.TypeGSV:
		gsv := sentence.(nmea.GSV)
		v.log.Debugf("gsv: satellites_in_view=%d message=%d/%d",
			gsv.NumberSVsInView, gsv.MessageNumber, gsv.TotalMessages)
	}
}
