package parser

import (
	"strings"
	"testing"
)

type captureLogger struct {
	debugs []string
}

func (c *captureLogger) Debugf(format string, args ...interface{}) {
	c.debugs = append(c.debugs, format)
}
func (c *captureLogger) Warnf(string, ...interface{})  {}
func (c *captureLogger) Errorf(string, ...interface{}) {}

func TestSatelliteViewLogsGSA(t *testing.T) {
	cap := &captureLogger{}
	v := NewSatelliteView(cap)
	v.Observe("$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39")

	if len(cap.debugs) != 1 || !strings.HasPrefix(cap.debugs[0], "gsa:") {
		t.Errorf("expected one gsa debug line, got %v", cap.debugs)
	}
}

func TestSatelliteViewLogsGSV(t *testing.T) {
	cap := &captureLogger{}
	v := NewSatelliteView(cap)
	v.Observe("$GPGSV,3,1,11,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45*7C")

	if len(cap.debugs) != 1 || !strings.HasPrefix(cap.debugs[0], "gsv:") {
		t.Errorf("expected one gsv debug line, got %v", cap.debugs)
	}
}

func TestSatelliteViewIgnoresUnparseable(t *testing.T) {
	cap := &captureLogger{}
	v := NewSatelliteView(cap)
	v.Observe("not a sentence")

	if len(cap.debugs) != 0 {
		t.Errorf("expected no debug lines for garbage input, got %v", cap.debugs)
	}
}

func TestSatelliteViewNilLoggerDefaultsToDiscard(t *testing.T) {
	v := NewSatelliteView(nil)
	v.Observe("$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39")
}
