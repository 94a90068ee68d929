// Package gnsserr holds the opaque error sentinels shared by every
// component of the GNSS timing core. Fine-grained diagnostic text belongs
// in the logging side channel (package logx), never in the error value
// itself: callers branch on category with errors.Is, not string matching.
package gnsserr

import "errors"

var (
	// ErrInput covers null/oversized/malformed-shape arguments: an
	// oversize buffer, a mismatched NMEA field count, an illegal
	// hemisphere character.
	ErrInput = errors.New("gnss: invalid input")

	// ErrInvalidFrame covers checksum failures (UBX Fletcher, NMEA XOR)
	// at the current buffer. Non-retriable for this buffer; the caller
	// may realign and try again with more bytes.
	ErrInvalidFrame = errors.New("gnss: checksum or frame integrity failure")

	// ErrIncomplete signals a UBX buffer shorter than its declared
	// length. The caller should accumulate more bytes and retry.
	ErrIncomplete = errors.New("gnss: incomplete frame")

	// ErrUnavailable is returned by Store.Get when the caller asked for
	// a field whose validity flag is false.
	ErrUnavailable = errors.New("gnss: requested field not valid")

	// ErrUninitialized is returned by a conversion when the time
	// reference has never been synced.
	ErrUninitialized = errors.New("gnss: time reference uninitialized")

	// ErrXtalOutOfRange is returned by a conversion when the stored
	// crystal error estimate falls outside the sane window.
	ErrXtalOutOfRange = errors.New("gnss: crystal error estimate out of range")

	// ErrAberrant is returned by Sync when a single aberrant sample
	// arrives without enough aberrant history to force a re-anchor.
	ErrAberrant = errors.New("gnss: aberrant sync sample rejected")

	// ErrDeviceIO wraps any syscall-level failure from the serial
	// session manager (open, configure, write).
	ErrDeviceIO = errors.New("gnss: device I/O failure")
)
