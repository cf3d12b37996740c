package pgpsig

import (
	"encoding/binary"
)

// rawSig builds signature packets field by field, so the tests can produce
// any structural defect without involving cryptography.
type rawSig struct {
	version  byte
	sigType  byte
	pkAlg    byte
	hashAlg  byte
	hashed   [][]byte
	unhashed [][]byte
	prefix   []byte
	mpis     [][]byte
}

func goodRaw() rawSig {
	return rawSig{
		version: 4,
		sigType: byte(SignatureBinary),
		pkAlg:   byte(PubKeyRSA),
		hashAlg: byte(HashSHA256),
		hashed: [][]byte{
			subpacket(subpacketCreationTime, be32bytes(1000)...),
		},
		unhashed: [][]byte{
			subpacket(subpacketIssuer, 1, 2, 3, 4, 5, 6, 7, 8),
		},
		prefix: []byte{0xab, 0xcd},
		mpis:   [][]byte{mpi(0x80, 0x01, 0x02)},
	}
}

func subpacket(typ byte, data ...byte) []byte {
	return append([]byte{byte(len(data) + 1), typ}, data...)
}

func critical(typ byte, data ...byte) []byte {
	return subpacket(typ|0x80, data...)
}

func mpi(b ...byte) []byte {
	out := make([]byte, 2, 2+len(b))
	binary.BigEndian.PutUint16(out, uint16(8*len(b)))
	return append(out, b...)
}

func be32bytes(v uint32) []byte {
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

func (s rawSig) body() []byte {
	b := []byte{s.version, s.sigType, s.pkAlg, s.hashAlg}
	b = append(b, area(s.hashed)...)
	b = append(b, area(s.unhashed)...)
	b = append(b, s.prefix...)
	for _, m := range s.mpis {
		b = append(b, m...)
	}
	return b
}

// packet frames the body with a minimal new format header
func (s rawSig) packet() []byte {
	return newFormat(tagSignature, s.body())
}

func newFormat(tag byte, body []byte) []byte {
	hdr := []byte{0xc0 | tag}
	n := len(body)
	switch {
	case n < 192:
		hdr = append(hdr, byte(n))
	case n < 8384:
		n -= 192
		hdr = append(hdr, byte(n>>8)+192, byte(n))
	default:
		hdr = append(hdr, 255)
		hdr = append(hdr, be32bytes(uint32(n))...)
	}
	return append(hdr, body...)
}

func oldFormat(tag byte, lengthType byte, body []byte) []byte {
	hdr := []byte{0x80 | tag<<2 | lengthType}
	switch lengthType {
	case 0:
		hdr = append(hdr, byte(len(body)))
	case 1:
		hdr = append(hdr, byte(len(body)>>8), byte(len(body)))
	case 2:
		hdr = append(hdr, be32bytes(uint32(len(body)))...)
	}
	return append(hdr, body...)
}
