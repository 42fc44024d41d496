package syntax

// Span represents a location range in template source.
type Span struct {
	StartLine   uint16
	StartCol    uint16
	StartOffset uint32
	EndLine     uint16
	EndCol      uint16
	EndOffset   uint32
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	if s.EndOffset <= s.StartOffset {
		return 0
	}
	return int(s.EndOffset - s.StartOffset)
}

// Text returns the slice of source the span covers.
func (s Span) Text(source string) string {
	start := int(s.StartOffset)
	end := int(s.EndOffset)
	if start > len(source) {
		start = len(source)
	}
	if end > len(source) {
		end = len(source)
	}
	return source[start:end]
}

// Join returns a span covering both s and other.
func (s Span) Join(other Span) Span {
	out := s
	if other.StartOffset < s.StartOffset {
		out.StartLine = other.StartLine
		out.StartCol = other.StartCol
		out.StartOffset = other.StartOffset
	}
	if other.EndOffset > s.EndOffset {
		out.EndLine = other.EndLine
		out.EndCol = other.EndCol
		out.EndOffset = other.EndOffset
	}
	return out
}
