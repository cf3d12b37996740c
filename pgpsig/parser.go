package pgpsig

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm", "pgpsig")

const (
	tagSignature = 2

	subpacketCreationTime      = 2
	subpacketExpirationTime    = 3
	subpacketKeyExpiration     = 9
	subpacketIssuer            = 16
	subpacketPrimaryUserID     = 25
	subpacketKeyFlags          = 27
	subpacketRevocationReason  = 29
	subpacketEmbeddedSignature = 32
	subpacketIssuerFingerprint = 33

	v4FingerprintLen = 20
)

// Parse validates that buf holds exactly one version 4 OpenPGP signature
// packet of the expected type and returns its summary.
//
// Signatures using a weak hash algorithm are rejected unless allowed.
// If time is not zero, signatures created after time, or expired at time,
// are rejected. A zero time disables both checks.
func Parse(buf []byte, time uint32, allow AllowWeakHashes, expected SignatureType) (*Summary, error) {
	body, err := readPacket(buf)
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", "packet", "err", err.Error())
		return nil, err
	}

	s, err := parseSignature(body, allow, expected)
	if err != nil {
		logger.KV(xlog.DEBUG, "reason", "signature", "err", err.Error())
		return nil, err
	}

	if time != 0 {
		if err = s.checkTime(time); err != nil {
			logger.KV(xlog.DEBUG, "reason", "time", "created", s.creation, "time", time, "err", err.Error())
			return nil, err
		}
	}
	return s, nil
}

// readPacket returns the body of the only packet in buf
func readPacket(buf []byte) ([]byte, error) {
	r := &reader{buf: buf}
	ctb, err := r.u8()
	if err != nil {
		return nil, malformedf("empty buffer")
	}
	if ctb&0x80 == 0 {
		return nil, malformedf("invalid packet header 0x%02x", ctb)
	}

	var tag byte
	var length int
	if ctb&0x40 != 0 {
		tag = ctb & 0x3f
		length, err = readPacketLength(r)
	} else {
		tag = (ctb >> 2) & 0x0f
		length, err = readOldPacketLength(r, ctb&0x03)
	}
	if err != nil {
		return nil, err
	}
	if tag != tagSignature {
		return nil, malformedf("expected signature packet, got tag %d", tag)
	}

	body, err := r.take(length)
	if err != nil {
		return nil, malformedf("truncated packet: length %d, have %d", length, r.len())
	}
	if r.len() != 0 {
		return nil, malformedf("%d trailing bytes after packet", r.len())
	}
	return body, nil
}

// readPacketLength reads a new format packet length.
// Partial body lengths are not valid for signature packets.
func readPacketLength(r *reader) (int, error) {
	first, err := r.u8()
	if err != nil {
		return 0, err
	}
	switch {
	case first < 192:
		return int(first), nil
	case first < 224:
		second, err := r.u8()
		if err != nil {
			return 0, err
		}
		return (int(first)-192)<<8 + int(second) + 192, nil
	case first == 255:
		n, err := r.u32()
		if err != nil {
			return 0, err
		}
		if n < 8384 {
			return 0, malformedf("non-minimal packet length %d", n)
		}
		return int(n), nil
	}
	return 0, malformedf("partial body length not allowed")
}

func readOldPacketLength(r *reader, lengthType byte) (int, error) {
	switch lengthType {
	case 0:
		n, err := r.u8()
		return int(n), err
	case 1:
		n, err := r.u16()
		return int(n), err
	case 2:
		n, err := r.u32()
		return int(n), err
	}
	return 0, malformedf("indeterminate packet length not allowed")
}

// readSubpacketLength reads a subpacket length (RFC 4880, 5.2.3.1)
func readSubpacketLength(r *reader) (int, error) {
	first, err := r.u8()
	if err != nil {
		return 0, err
	}
	switch {
	case first < 192:
		return int(first), nil
	case first < 255:
		second, err := r.u8()
		if err != nil {
			return 0, err
		}
		return (int(first)-192)<<8 + int(second) + 192, nil
	}
	n, err := r.u32()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func parseSignature(body []byte, allow AllowWeakHashes, expected SignatureType) (*Summary, error) {
	r := &reader{buf: body}

	version, err := r.u8()
	if err != nil {
		return nil, err
	}
	if version != 4 {
		return nil, malformedf("unsupported signature version %d", version)
	}

	sigType, err := r.u8()
	if err != nil {
		return nil, err
	}
	if SignatureType(sigType) != expected {
		return nil, malformedf("expected %s signature, got %s", expected, SignatureType(sigType))
	}

	pkAlg, err := r.u8()
	if err != nil {
		return nil, err
	}
	hashAlg, err := r.u8()
	if err != nil {
		return nil, err
	}

	s := &Summary{
		sigType:   SignatureType(sigType),
		pubKeyAlg: PublicKeyAlgorithm(pkAlg),
		hashAlg:   HashAlgorithm(hashAlg),
	}
	if !s.pubKeyAlg.IsKnown() {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "public key algorithm %d", pkAlg)
	}
	if !s.hashAlg.IsKnown() {
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "hash algorithm %d", hashAlg)
	}
	if s.hashAlg.IsWeak() && allow != AllowWeakHash {
		return nil, errors.Wrapf(ErrWeakHash, "%s", s.hashAlg)
	}

	hashedLen, err := r.u16()
	if err != nil {
		return nil, err
	}
	hashed, err := r.sub(int(hashedLen))
	if err != nil {
		return nil, err
	}
	if err = s.parseSubpackets(hashed, true); err != nil {
		return nil, err
	}

	unhashedLen, err := r.u16()
	if err != nil {
		return nil, err
	}
	unhashed, err := r.sub(int(unhashedLen))
	if err != nil {
		return nil, err
	}
	if err = s.parseSubpackets(unhashed, false); err != nil {
		return nil, err
	}

	prefix, err := r.take(2)
	if err != nil {
		return nil, err
	}
	copy(s.hashPrefix[:], prefix)

	for i := 0; i < s.pubKeyAlg.mpiCount(); i++ {
		if err = readMPI(r); err != nil {
			return nil, err
		}
	}
	if r.len() != 0 {
		return nil, malformedf("%d trailing bytes after signature MPIs", r.len())
	}

	return s, nil
}

// parseSubpackets walks a subpacket area. Only the hashed area is trusted
// for creation and expiration times; the issuer may come from either.
// Subpackets that common OpenPGP decoders refuse are rejected here as well,
// even when they carry nothing a document signature needs.
func (s *Summary) parseSubpackets(r *reader, hashed bool) error {
	var hasCreation bool
	for r.len() > 0 {
		n, err := readSubpacketLength(r)
		if err != nil {
			return err
		}
		if n == 0 {
			return malformedf("empty subpacket")
		}
		data, err := r.take(n)
		if err != nil {
			return err
		}

		typ := data[0] & 0x7f
		critical := data[0]&0x80 != 0
		data = data[1:]

		if critical && !hashed {
			return malformedf("critical subpacket %d in unhashed area", typ)
		}

		switch {
		case typ == subpacketCreationTime && !hashed:
			return malformedf("creation time in unhashed area")
		case typ == subpacketEmbeddedSignature:
			return malformedf("embedded signature not allowed")
		case typ == subpacketKeyExpiration && hashed:
			if len(data) != 4 {
				return malformedf("key expiration subpacket length %d", len(data))
			}
		case typ == subpacketPrimaryUserID && hashed:
			if len(data) != 1 {
				return malformedf("primary user ID subpacket length %d", len(data))
			}
		case (typ == subpacketKeyFlags || typ == subpacketRevocationReason) && hashed:
			if len(data) == 0 {
				return malformedf("empty subpacket %d", typ)
			}
		case typ == subpacketCreationTime:
			if hasCreation {
				return malformedf("duplicate creation time")
			}
			if len(data) != 4 {
				return malformedf("creation time subpacket length %d", len(data))
			}
			s.creation = be32(data)
			hasCreation = true
		case typ == subpacketExpirationTime && hashed:
			if s.hasExpire {
				return malformedf("duplicate expiration time")
			}
			if len(data) != 4 {
				return malformedf("expiration time subpacket length %d", len(data))
			}
			s.expiration = be32(data)
			s.hasExpire = true
		case typ == subpacketIssuer:
			if len(data) != 8 {
				return malformedf("issuer subpacket length %d", len(data))
			}
			if s.hasIssuer {
				if hashed {
					return malformedf("duplicate issuer")
				}
				continue
			}
			s.issuer = uint64(be32(data))<<32 | uint64(be32(data[4:]))
			s.hasIssuer = true
		case typ == subpacketIssuerFingerprint:
			if len(data) != 1+v4FingerprintLen || data[0] != 4 {
				return malformedf("invalid issuer fingerprint subpacket")
			}
			if s.fingerprint == nil {
				s.fingerprint = append([]byte(nil), data[1:]...)
			}
		case critical:
			return malformedf("unsupported critical subpacket %d", typ)
		}
	}

	if hashed && !hasCreation {
		return malformedf("missing creation time")
	}
	return nil
}

func readMPI(r *reader) error {
	bits, err := r.u16()
	if err != nil {
		return err
	}
	if bits == 0 {
		return malformedf("empty MPI")
	}
	_, err = r.take((int(bits) + 7) / 8)
	return err
}

func (s *Summary) checkTime(time uint32) error {
	if s.creation > time {
		return errors.Wrapf(ErrNotYetValid, "created at %d, time %d", s.creation, time)
	}
	if s.hasExpire && s.expiration != 0 &&
		uint64(s.creation)+uint64(s.expiration) <= uint64(time) {
		return errors.Wrapf(ErrExpired, "expired at %d, time %d",
			uint64(s.creation)+uint64(s.expiration), time)
	}
	return nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
