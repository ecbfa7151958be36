// Package meta computes the byte ranges and line/column locations of parsed spans.
//
// Every span is measured relative to the span that precedes it, so a chain of spans
// built with New always tiles the source without gaps or overlaps.
package meta

import "fmt"

// Location is a 1-indexed line and column. Columns count bytes.
type Location struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Origin is the location of the first byte of a source.
var Origin = Location{Line: 1, Col: 1}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// Range holds inclusive byte offsets. An empty span has End == Start-1.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int {
	return r.End - r.Start + 1
}

// Next is the offset of the first byte after the range.
func (r Range) Next() int {
	return r.End + 1
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// Meta describes where a span of text sits in its source.
type Meta struct {
	Range Range
	Start Location // location of the first byte
	End   Location // location of the last byte (Start for an empty span)
	Next  Location // location of the byte after the span

	// endsCR records a trailing '\r' so that a '\n' opening the next span is not counted
	// as a second line break.
	endsCR bool
}

// New measures raw as the span following prev. A nil prev places raw at offset 0.
func New(raw string, prev *Meta) Meta {
	start, loc := 0, Origin
	var crBefore bool
	var crLoc Location
	if prev != nil {
		start = prev.Range.Next()
		loc = prev.Next
		crBefore, crLoc = prev.endsCR, prev.End
	}
	end, next, endsCR := scan(raw, loc, crBefore, crLoc)
	return Meta{
		Range:  Range{Start: start, End: start + len(raw) - 1},
		Start:  loc,
		End:    end,
		Next:   next,
		endsCR: endsCR,
	}
}

// At returns a Meta that carries only a range. It is used for spans whose text
// locations are unknown, such as nodes decoded from their external form.
func At(r Range) Meta {
	return Meta{Range: r}
}

// Position returns the location of offset within src.
func Position(src string, offset int) Location {
	if offset > len(src) {
		offset = len(src)
	}
	if offset <= 0 {
		return Origin
	}
	return New(src[:offset], nil).Next
}

func scan(raw string, cur Location, cr bool, crLoc Location) (end, next Location, endsCR bool) {
	end = cur
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '\n' && cr:
			// Second half of a "\r\n" pair: the '\r' already broke the line.
			end = Location{Line: crLoc.Line, Col: crLoc.Col + 1}
			cr = false
		case c == '\n':
			end = cur
			cur = Location{Line: cur.Line + 1, Col: 1}
			cr = false
		case c == '\r':
			end, crLoc = cur, cur
			cur = Location{Line: cur.Line + 1, Col: 1}
			cr = true
		default:
			end = cur
			cur.Col++
			cr = false
		}
	}
	return end, cur, cr
}

func (m Meta) String() string {
	return fmt.Sprintf("%s %s-%s", m.Range, m.Start, m.End)
}

// Slice measures raw[i:j], where raw is the text m describes.
func (m Meta) Slice(raw string, i, j int) Meta {
	origin := Meta{Range: Range{End: m.Range.Start - 1}, Next: m.Start}
	before := New(raw[:i], &origin)
	return New(raw[i:j], &before)
}
