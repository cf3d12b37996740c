// Package testsig produces real OpenPGP signatures for tests.
package testsig

import (
	"bytes"
	"crypto"
	_ "crypto/md5"  // register MD5 for weak hash fixtures
	_ "crypto/sha1" // register SHA1 for weak hash fixtures
	_ "crypto/sha256"
	_ "crypto/sha512"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
	_ "golang.org/x/crypto/ripemd160" // register RIPEMD160 for weak hash fixtures
)

// Options control the signature produced by Sign
type Options struct {
	// Hash defaults to SHA256
	Hash crypto.Hash
	// Created defaults to now
	Created time.Time
	// Lifetime in seconds, zero for no expiration subpacket
	Lifetime uint32
	// Text produces a text signature instead of a binary one
	Text bool
}

// Signer holds a freshly generated RSA key
type Signer struct {
	Entity *openpgp.Entity
}

var (
	once   sync.Once
	shared *Signer
	errNew error
)

// NewSigner generates a new signing key
func NewSigner() (*Signer, error) {
	e, err := openpgp.NewEntity("xrpm test", "", "test@example.com", &packet.Config{RSABits: 1024})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Signer{Entity: e}, nil
}

// Shared returns a signer generated once per test binary
func Shared() (*Signer, error) {
	once.Do(func() {
		shared, errNew = NewSigner()
	})
	return shared, errNew
}

// MustShared returns the shared signer or panics
func MustShared() *Signer {
	s, err := Shared()
	if err != nil {
		panic(err)
	}
	return s
}

// KeyID returns the key ID of the signing key
func (s *Signer) KeyID() uint64 {
	return s.Entity.PrivateKey.KeyId
}

// Sign returns a detached signature packet over content
func (s *Signer) Sign(content []byte, opts Options) ([]byte, error) {
	priv := s.Entity.PrivateKey

	hash := opts.Hash
	if hash == 0 {
		hash = crypto.SHA256
	}
	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}
	sigType := packet.SigTypeBinary
	if opts.Text {
		sigType = packet.SigTypeText
	}

	sig := &packet.Signature{
		SigType:      sigType,
		PubKeyAlgo:   priv.PubKeyAlgo,
		Hash:         hash,
		CreationTime: created,
		IssuerKeyId:  &priv.KeyId,
	}
	if opts.Lifetime != 0 {
		lifetime := opts.Lifetime
		sig.SigLifetimeSecs = &lifetime
	}

	h := hash.New()
	_, _ = h.Write(content)
	if err := sig.Sign(h, priv, nil); err != nil {
		return nil, errors.WithStack(err)
	}

	var buf bytes.Buffer
	if err := sig.Serialize(&buf); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// MustSign returns a signature or panics
func (s *Signer) MustSign(content []byte, opts Options) []byte {
	b, err := s.Sign(content, opts)
	if err != nil {
		panic(err)
	}
	return b
}

// ArmoredPublicKey returns the public key in ASCII armor
func (s *Signer) ArmoredPublicKey() ([]byte, error) {
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err = s.Entity.Serialize(w); err != nil {
		return nil, errors.WithStack(err)
	}
	if err = w.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// Armor wraps a binary signature in a PGP SIGNATURE armor block
func Armor(sig []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.SignatureType, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if _, err = w.Write(sig); err != nil {
		return nil, errors.WithStack(err)
	}
	if err = w.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
