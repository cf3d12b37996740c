package testsig

import "encoding/binary"

// Raw builds a version 4 signature packet field by field,
// without a key or a valid signature value.
type Raw struct {
	SigType  byte
	PubKey   byte
	Hash     byte
	Hashed   [][]byte
	Unhashed [][]byte
	MPIs     [][]byte
}

// NewRaw returns an RSA SHA256 binary signature created at 1000,
// with an issuer in the unhashed area
func NewRaw() Raw {
	return Raw{
		PubKey:   1,
		Hash:     8,
		Hashed:   [][]byte{Subpacket(2, BE32(1000)...)},
		Unhashed: [][]byte{Subpacket(16, 1, 2, 3, 4, 5, 6, 7, 8)},
		MPIs:     [][]byte{MPI(0x80, 0x01, 0x02)},
	}
}

// Subpacket returns a subpacket with a one byte length
func Subpacket(typ byte, data ...byte) []byte {
	return append([]byte{byte(len(data) + 1), typ}, data...)
}

// MPI returns b encoded as a multiprecision integer
func MPI(b ...byte) []byte {
	out := make([]byte, 2, 2+len(b))
	binary.BigEndian.PutUint16(out, uint16(8*len(b)))
	return append(out, b...)
}

// BE32 returns v in big endian order
func BE32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func area(subs [][]byte) []byte {
	var out []byte
	for _, s := range subs {
		out = append(out, s...)
	}
	l := make([]byte, 2)
	binary.BigEndian.PutUint16(l, uint16(len(out)))
	return append(l, out...)
}

// Packet returns the signature framed with a new format header
func (r Raw) Packet() []byte {
	body := []byte{4, r.SigType, r.PubKey, r.Hash}
	body = append(body, area(r.Hashed)...)
	body = append(body, area(r.Unhashed)...)
	body = append(body, 0xab, 0xcd)
	for _, m := range r.MPIs {
		body = append(body, m...)
	}

	hdr := []byte{0xc2}
	n := len(body)
	switch {
	case n < 192:
		hdr = append(hdr, byte(n))
	case n < 8384:
		n -= 192
		hdr = append(hdr, byte(n>>8)+192, byte(n))
	default:
		hdr = append(hdr, 255)
		hdr = append(hdr, BE32(uint32(n))...)
	}
	return append(hdr, body...)
}
