// Package model defines the core data structures for cms.
package model

import "strconv"

// Field size limits shared by the store and the command layer.
const (
	// MaxNameLen is the maximum character size for the student name field.
	MaxNameLen = 99
	// MaxProgrammeLen is the maximum character size for the programme field.
	MaxProgrammeLen = 99
)

// Record is one student entry. ID is the uniqueness key within a store;
// the store itself tolerates any mark value, range checks happen in the
// command layer before a record is built.
type Record struct {
	ID        int
	Name      string
	Programme string
	Mark      float64
}

// FormatMark renders the mark the way it appears on disk and in tables,
// with exactly one decimal place.
func (r Record) FormatMark() string {
	return strconv.FormatFloat(r.Mark, 'f', 1, 64)
}

// Patch describes a partial update to a record. An empty string leaves the
// corresponding field unchanged; a negative mark leaves the mark unchanged.
type Patch struct {
	Name      string
	Programme string
	Mark      float64
}

// NoMark is the sentinel a caller puts in Patch.Mark to leave it unchanged.
const NoMark = -1.0

// Apply returns a copy of rec with the provided fields replaced.
func (p Patch) Apply(rec Record) Record {
	if p.Name != "" {
		rec.Name = p.Name
	}
	if p.Programme != "" {
		rec.Programme = p.Programme
	}
	if p.Mark >= 0 {
		rec.Mark = p.Mark
	}
	return rec
}

// PatchOf builds the patch that would turn any record's mutable fields into
// those of rec. Used by undo to replay the pre-update snapshot.
func PatchOf(rec Record) Patch {
	p := Patch{Name: rec.Name, Programme: rec.Programme, Mark: rec.Mark}
	if p.Mark < 0 {
		p.Mark = NoMark
	}
	return p
}
