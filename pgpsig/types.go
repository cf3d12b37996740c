package pgpsig

import (
	"fmt"
	"time"
)

// HashAlgorithm is an OpenPGP hash algorithm identifier (RFC 4880, 9.4)
type HashAlgorithm uint8

// Hash algorithms recognized by the parser
const (
	HashMD5       HashAlgorithm = 1
	HashSHA1      HashAlgorithm = 2
	HashRIPEMD160 HashAlgorithm = 3
	HashSHA256    HashAlgorithm = 8
	HashSHA384    HashAlgorithm = 9
	HashSHA512    HashAlgorithm = 10
	HashSHA224    HashAlgorithm = 11
)

var hashNames = map[HashAlgorithm]string{
	HashMD5:       "MD5",
	HashSHA1:      "SHA1",
	HashRIPEMD160: "RIPEMD160",
	HashSHA256:    "SHA256",
	HashSHA384:    "SHA384",
	HashSHA512:    "SHA512",
	HashSHA224:    "SHA224",
}

// IsKnown returns true if the algorithm is recognized
func (h HashAlgorithm) IsKnown() bool {
	_, ok := hashNames[h]
	return ok
}

// IsWeak returns true for algorithms that must not be trusted unless the
// caller explicitly allows weak hashes
func (h HashAlgorithm) IsWeak() bool {
	switch h {
	case HashMD5, HashSHA1, HashRIPEMD160:
		return true
	}
	return false
}

func (h HashAlgorithm) String() string {
	if n, ok := hashNames[h]; ok {
		return n
	}
	return fmt.Sprintf("hash(%d)", uint8(h))
}

// PublicKeyAlgorithm is an OpenPGP public key algorithm identifier (RFC 4880, 9.1)
type PublicKeyAlgorithm uint8

// Public key algorithms recognized by the parser
const (
	PubKeyRSA   PublicKeyAlgorithm = 1
	PubKeyDSA   PublicKeyAlgorithm = 17
	PubKeyECDSA PublicKeyAlgorithm = 19
	PubKeyEdDSA PublicKeyAlgorithm = 22
)

var pubKeyNames = map[PublicKeyAlgorithm]string{
	PubKeyRSA:   "RSA",
	PubKeyDSA:   "DSA",
	PubKeyECDSA: "ECDSA",
	PubKeyEdDSA: "EdDSA",
}

// IsKnown returns true if the algorithm is recognized
func (a PublicKeyAlgorithm) IsKnown() bool {
	_, ok := pubKeyNames[a]
	return ok
}

// mpiCount returns the number of MPIs in a signature made with the algorithm
func (a PublicKeyAlgorithm) mpiCount() int {
	if a == PubKeyRSA {
		return 1
	}
	return 2
}

func (a PublicKeyAlgorithm) String() string {
	if n, ok := pubKeyNames[a]; ok {
		return n
	}
	return fmt.Sprintf("pubkey(%d)", uint8(a))
}

// SignatureType is the OpenPGP signature type (RFC 4880, 5.2.1)
type SignatureType uint8

// Signature types over documents
const (
	SignatureBinary SignatureType = 0x00
	SignatureText   SignatureType = 0x01
)

func (t SignatureType) String() string {
	switch t {
	case SignatureBinary:
		return "binary"
	case SignatureText:
		return "text"
	}
	return fmt.Sprintf("type(0x%02x)", uint8(t))
}

// AllowWeakHashes is the caller's policy for weak hash algorithms
type AllowWeakHashes bool

// Weak hash policies
const (
	DenyWeakHashes AllowWeakHashes = false
	AllowWeakHash  AllowWeakHashes = true
)

// Summary describes a signature that passed validation.
// A Summary is immutable.
type Summary struct {
	hashAlg     HashAlgorithm
	pubKeyAlg   PublicKeyAlgorithm
	sigType     SignatureType
	creation    uint32
	expiration  uint32
	hasExpire   bool
	issuer      uint64
	hasIssuer   bool
	fingerprint []byte
	hashPrefix  [2]byte
}

// HashAlgorithm returns the hash algorithm of the signature
func (s *Summary) HashAlgorithm() HashAlgorithm {
	return s.hashAlg
}

// PublicKeyAlgorithm returns the public key algorithm of the signature
func (s *Summary) PublicKeyAlgorithm() PublicKeyAlgorithm {
	return s.pubKeyAlg
}

// SignatureType returns the signature type
func (s *Summary) SignatureType() SignatureType {
	return s.sigType
}

// CreationTime returns the creation time in seconds since the epoch
func (s *Summary) CreationTime() uint32 {
	return s.creation
}

// Created returns the creation time
func (s *Summary) Created() time.Time {
	return time.Unix(int64(s.creation), 0).UTC()
}

// Expiration returns the validity period in seconds after creation,
// and false if the signature has no expiration subpacket.
// Zero means the signature never expires.
func (s *Summary) Expiration() (uint32, bool) {
	return s.expiration, s.hasExpire
}

// IssuerKeyID returns the 64-bit key ID of the issuer, if present
func (s *Summary) IssuerKeyID() (uint64, bool) {
	return s.issuer, s.hasIssuer
}

// IssuerFingerprint returns a copy of the issuer fingerprint, or nil
func (s *Summary) IssuerFingerprint() []byte {
	if s.fingerprint == nil {
		return nil
	}
	return append([]byte(nil), s.fingerprint...)
}

// HashPrefix returns the left 16 bits of the signed hash value
func (s *Summary) HashPrefix() [2]byte {
	return s.hashPrefix
}
