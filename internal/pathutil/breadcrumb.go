package pathutil

import (
	"strconv"
	"strings"
)

// segment is one immutable link of a Path.
type segment struct {
	parent  *segment
	name    string
	index   int
	isIndex bool
	depth   int
}

// Path is an immutable breadcrumb. The zero value is the root path.
// Paths are safe to share between goroutines.
type Path struct {
	last *segment
}

// Child returns a new path extended with a named segment.
func (p Path) Child(name string) Path {
	return Path{last: &segment{parent: p.last, name: name, depth: p.Len() + 1}}
}

// Index returns a new path extended with an array index segment.
func (p Path) Index(i int) Path {
	return Path{last: &segment{parent: p.last, index: i, isIndex: true, depth: p.Len() + 1}}
}

// Len returns the number of segments.
func (p Path) Len() int {
	if p.last == nil {
		return 0
	}
	return p.last.depth
}

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool {
	return p.last == nil
}

// segments returns the segments root first.
func (p Path) segments() []*segment {
	segs := make([]*segment, p.Len())
	for s, i := p.last, len(segs)-1; s != nil; s, i = s.parent, i-1 {
		segs[i] = s
	}
	return segs
}

// String materializes the path in dotted notation: "items[0].name".
// Only call when the path is needed.
func (p Path) String() string {
	if p.last == nil {
		return ""
	}
	var b strings.Builder
	for i, s := range p.segments() {
		if s.isIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
	}
	return b.String()
}

// Pointer materializes the path as an RFC 6901 JSON Pointer: "/items/0/name".
// The root path is the empty pointer.
func (p Path) Pointer() string {
	var b strings.Builder
	for _, s := range p.segments() {
		b.WriteByte('/')
		if s.isIndex {
			b.WriteString(strconv.Itoa(s.index))
		} else {
			b.WriteString(EscapePointerToken(s.name))
		}
	}
	return b.String()
}

// Equal reports whether p and q name the same location.
func (p Path) Equal(q Path) bool {
	a, b := p.last, q.last
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if a.depth != b.depth || a.isIndex != b.isIndex || a.index != b.index || a.name != b.name {
			return false
		}
		a, b = a.parent, b.parent
	}
	return a == nil && b == nil
}
