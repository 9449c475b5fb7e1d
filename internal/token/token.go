package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is a 1-based line/column location in a source module.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Compare orders positions by line, then column.
func (p Position) Compare(other Position) int {
	if p.Line != other.Line {
		return p.Line - other.Line
	}
	return p.Column - other.Column
}

// Range is a half-open source span [Start, End).
type Range struct {
	Start Position
	End   Position
}

// Dummy is used for synthesized nodes that have no source location.
var Dummy = Range{}

func NewRange(startLine, startColumn, endLine, endColumn int) Range {
	return Range{
		Start: Position{Line: startLine, Column: startColumn},
		End:   Position{Line: endLine, Column: endColumn},
	}
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

func (r Range) IsDummy() bool {
	return r == Dummy
}

// Contains reports whether pos lies inside the range. The end column is inclusive so a
// cursor placed right after the last character still hits the node.
func (r Range) Contains(pos Position) bool {
	return r.Start.Compare(pos) <= 0 && pos.Compare(r.End) <= 0
}

// ContainsRange reports whether other is nested in r.
func (r Range) ContainsRange(other Range) bool {
	return r.Start.Compare(other.Start) <= 0 && other.End.Compare(r.End) <= 0
}

// Compare orders ranges by start, then end.
func (r Range) Compare(other Range) int {
	if c := r.Start.Compare(other.Start); c != 0 {
		return c
	}
	return r.End.Compare(other.End)
}

// Union returns the smallest range covering both r and other.
func (r Range) Union(other Range) Range {
	if r.IsDummy() {
		return other
	}
	if other.IsDummy() {
		return r
	}
	result := r
	if other.Start.Compare(result.Start) < 0 {
		result.Start = other.Start
	}
	if other.End.Compare(result.End) > 0 {
		result.End = other.End
	}
	return result
}

// ParseRange parses "line:col-line:col".
func ParseRange(s string) (Range, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Dummy, fmt.Errorf("invalid range %q: expected line:col-line:col", s)
	}
	startPos, err := ParsePosition(start)
	if err != nil {
		return Dummy, fmt.Errorf("invalid range %q: %w", s, err)
	}
	endPos, err := ParsePosition(end)
	if err != nil {
		return Dummy, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return Range{Start: startPos, End: endPos}, nil
}

// ParsePosition parses "line:col".
func ParsePosition(s string) (Position, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return Position{}, fmt.Errorf("invalid position %q", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return Position{}, fmt.Errorf("invalid line in %q: %w", s, err)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return Position{}, fmt.Errorf("invalid column in %q: %w", s, err)
	}
	return Position{Line: line, Column: col}, nil
}
