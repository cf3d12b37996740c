package pgpsig

import "encoding/binary"

// reader is a bounds-checked cursor over an untrusted buffer
type reader struct {
	buf []byte
}

func (r *reader) len() int {
	return len(r.buf)
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.buf) {
		return nil, malformedf("need %d bytes, have %d", n, len(r.buf))
	}
	b := r.buf[:n:n]
	r.buf = r.buf[n:]
	return b, nil
}

func (r *reader) u8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// sub returns a reader over the next n bytes
func (r *reader) sub(n int) (*reader, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	return &reader{buf: b}, nil
}
