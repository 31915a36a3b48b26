package simd

// IndexNewline returns the index of the first '\n' in b, or -1 if b contains
// no newline. It is a thin, named entry point over Memchr so callers doing
// line splitting don't need to know the line terminator is a plain byte
// search under the hood.
func IndexNewline(b []byte) int {
	return Memchr(b, '\n')
}
