package rpmcrypto

import (
	"time"

	"github.com/effective-security/xrpm/metricskey"
	"github.com/effective-security/xrpm/pgpsig"
)

// Signature is a validated OpenPGP signature with the digest context
// that accumulates the signed content.
type Signature struct {
	sig *RawSignature
	ctx *DigestCtx
}

// Parse validates an untrusted signature buffer and prepares a digest
// context for its hash algorithm.
//
// If refTime is not zero, signatures created after refTime or expired at
// refTime are rejected.
func Parse(buf []byte, refTime uint32, allow pgpsig.AllowWeakHashes, token InitToken) (*Signature, error) {
	g := token.mustGate()
	defer metricskey.PerfSignatureParse.MeasureSince(time.Now(), g.lib.Name(), "facade")

	g.lock.Lock()
	defer g.lock.Unlock()

	sig, err := newRawSignature(g, buf, refTime, allow)
	if err != nil {
		return nil, err
	}

	algo := sig.HashAlgorithm()
	ctx, err := newDigestCtx(g, algo, allow)
	if err != nil {
		sig.closeLocked()
		logger.Panicf("digest rejected validated algorithm %s: %+v", algo, err)
	}

	return &Signature{
		sig: sig,
		ctx: ctx,
	}, nil
}

// Update adds signed content to the digest
func (s *Signature) Update(data []byte) {
	s.ctx.Update(data)
}

// Write implements io.Writer
func (s *Signature) Write(p []byte) (int, error) {
	return s.ctx.Write(p)
}

// PublicKeyAlgorithm returns the public key algorithm of the signature
func (s *Signature) PublicKeyAlgorithm() pgpsig.PublicKeyAlgorithm {
	return s.sig.PublicKeyAlgorithm()
}

// HashAlgorithm returns the hash algorithm of the signature
func (s *Signature) HashAlgorithm() pgpsig.HashAlgorithm {
	return s.ctx.Algorithm()
}

// Summary returns the result of validation
func (s *Signature) Summary() *pgpsig.Summary {
	return s.sig.Summary()
}

// Close releases the native resources.
// It is safe to call Close more than once.
func (s *Signature) Close() error {
	if s == nil || s.sig == nil || s.sig.g == nil {
		return nil
	}
	g := s.sig.g
	g.lock.Lock()
	defer g.lock.Unlock()

	s.ctx.closeLocked()
	s.sig.closeLocked()
	return nil
}
