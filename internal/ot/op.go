// Package ot implements server-side operational transformation for
// plain-text documents. Operations address the document by UTF-16
// code-unit offset, matching the wire contract of the editing clients.
package ot

import (
	"time"
	"unicode/utf16"
)

// Operation types.
const (
	OpInsert = "insert"
	OpDelete = "delete"
)

// Operation is a single edit against a document. Position and Length
// are UTF-16 code-unit offsets into the content as it was at the time
// the operation is applied. ClientVersion is the document version the
// author had observed when creating the operation; ServerVersion is
// assigned when the operation commits.
type Operation struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Position      int       `json:"position"`
	Text          string    `json:"text,omitempty"`
	Length        int       `json:"length,omitempty"`
	AuthorID      string    `json:"authorId"`
	ClientVersion int       `json:"clientVersion"`
	ServerVersion int       `json:"serverVersion"`
	CommittedAt   time.Time `json:"committedAt"`
}

// IsNoop reports whether applying op leaves content unchanged. No-op
// operations still commit and advance the document version.
func (op Operation) IsNoop() bool {
	switch op.Type {
	case OpInsert:
		return op.Text == ""
	case OpDelete:
		return op.Length <= 0
	}
	return true
}

// Length returns the length of s in UTF-16 code units.
func Length(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Apply splices op into content and returns the result. Positions are
// clamped to the valid range, so a late-arriving delete that only
// partially overlaps the current content removes the valid portion
// rather than failing.
func Apply(content string, op Operation) string {
	units := utf16.Encode([]rune(content))
	pos := clamp(op.Position, 0, len(units))
	switch op.Type {
	case OpInsert:
		if op.Text == "" {
			return content
		}
		ins := utf16.Encode([]rune(op.Text))
		out := make([]uint16, 0, len(units)+len(ins))
		out = append(out, units[:pos]...)
		out = append(out, ins...)
		out = append(out, units[pos:]...)
		return string(utf16.Decode(out))
	case OpDelete:
		end := clamp(pos+op.Length, pos, len(units))
		if pos == end {
			return content
		}
		out := make([]uint16, 0, len(units)-(end-pos))
		out = append(out, units[:pos]...)
		out = append(out, units[end:]...)
		return string(utf16.Decode(out))
	}
	return content
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
