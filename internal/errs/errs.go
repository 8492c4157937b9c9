/*
Copyright (C) 2026  LogEngine Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package errs names the error kinds the log store surfaces to callers.
//
// Most of the kinds below are not meant to propagate as errors at all —
// "not visible" and "unknown index" are represented as plain booleans or
// empty results at the call site, per the engine's error handling design.
// The sentinels here exist for the two kinds that do need a real error
// value, record_too_large and out_of_capacity, plus ErrEmptyRecord for an
// insert with an empty payload. allocation_failure is
// deliberately not an error value — it panics, because there is no
// recovery path once a bucket allocation fails.
package errs

import "errors"

var (
	// ErrEmptyRecord is returned by insert when len(bytes) == 0.
	ErrEmptyRecord = errors.New("logengine: record must be non-empty")

	// ErrRecordTooLarge is returned by insert when len(bytes) > 2^16-1.
	ErrRecordTooLarge = errors.New("logengine: record exceeds maximum length of 65535 bytes")

	// ErrCapacityExhausted is returned when a byte-log reservation would
	// run past the 48-bit offset field. Record ids are not checked against
	// the id space.
	ErrCapacityExhausted = errors.New("logengine: storage capacity exhausted")
)

// AllocationFailure panics with a fatal allocation error. Growable-array
// bucket allocation has no recovery path; callers are not expected to
// catch this.
func AllocationFailure(reason string) {
	panic("logengine: allocation failure: " + reason)
}
