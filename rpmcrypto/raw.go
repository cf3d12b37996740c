package rpmcrypto

import (
	"runtime"
	"time"

	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/metricskey"
	"github.com/effective-security/xrpm/native"
	"github.com/effective-security/xrpm/pgpsig"
)

// RawSignature owns the native parameters of one validated signature
type RawSignature struct {
	g       *gate
	params  native.Ptr
	summary *pgpsig.Summary
}

// NewRawSignature validates buf as a binary signature and passes it to the
// native library. A validation failure is returned as an error, and the
// native library is not called.
func NewRawSignature(buf []byte, refTime uint32, allow pgpsig.AllowWeakHashes, token InitToken) (*RawSignature, error) {
	g := token.mustGate()

	g.lock.Lock()
	defer g.lock.Unlock()

	return newRawSignature(g, buf, refTime, allow)
}

// newRawSignature must be called with the global lock held
func newRawSignature(g *gate, buf []byte, refTime uint32, allow pgpsig.AllowWeakHashes) (*RawSignature, error) {
	defer metricskey.PerfSignatureParse.MeasureSince(time.Now(), g.lib.Name(), "raw")

	summary, err := pgpsig.Parse(buf, refTime, allow, pgpsig.SignatureBinary)
	if err != nil {
		kind := pgpsig.KindOf(err)
		metricskey.StatsSignatureRejected.IncrCounter(1, kind.String())
		logger.KV(xlog.DEBUG, "reason", kind.String(), "err", err.Error())
		return nil, err
	}

	params, err := g.lib.ParseParams(buf, native.TagSignature)
	if err != nil {
		logger.Panicf("native library rejected a validated signature: %+v", err)
	}
	if params.IsNull() {
		logger.Panicf("native library returned no signature parameters")
	}

	s := &RawSignature{
		g:       g,
		params:  params,
		summary: summary,
	}
	runtime.SetFinalizer(s, (*RawSignature).Close)

	hash, pubKey := s.hashAlgorithm(), s.publicKeyAlgorithm()
	if hash != uint(summary.HashAlgorithm()) || pubKey != uint(summary.PublicKeyAlgorithm()) {
		s.closeLocked()
		logger.Panicf("native algorithms hash=%d pubkey=%d, validated hash=%d pubkey=%d",
			hash, pubKey, summary.HashAlgorithm(), summary.PublicKeyAlgorithm())
	}
	return s, nil
}

func (s *RawSignature) algo(kind native.AlgoKind) uint {
	if s == nil || s.params.IsNull() {
		logger.Panicf("use of closed signature")
	}
	return s.g.lib.ParamsAlgo(s.params, kind)
}

func (s *RawSignature) hashAlgorithm() uint {
	return s.algo(native.AlgoHash)
}

func (s *RawSignature) publicKeyAlgorithm() uint {
	return s.algo(native.AlgoPubKey)
}

// HashAlgorithm returns the hash algorithm reported by the native library
func (s *RawSignature) HashAlgorithm() pgpsig.HashAlgorithm {
	alg := s.hashAlgorithm()
	if alg > 255 {
		logger.Panicf("invalid hash algorithm %d", alg)
	}
	return pgpsig.HashAlgorithm(alg)
}

// PublicKeyAlgorithm returns the public key algorithm reported by the native library
func (s *RawSignature) PublicKeyAlgorithm() pgpsig.PublicKeyAlgorithm {
	alg := s.publicKeyAlgorithm()
	if alg > 255 {
		logger.Panicf("invalid public key algorithm %d", alg)
	}
	return pgpsig.PublicKeyAlgorithm(alg)
}

// Summary returns the result of validation
func (s *RawSignature) Summary() *pgpsig.Summary {
	return s.summary
}

// Close releases the native parameters.
// It is safe to call Close more than once. After Freeze, Close blocks forever.
func (s *RawSignature) Close() error {
	if s == nil || s.g == nil {
		return nil
	}
	s.g.lock.Lock()
	defer s.g.lock.Unlock()
	s.closeLocked()
	return nil
}

func (s *RawSignature) closeLocked() {
	if !s.params.IsNull() {
		s.params = s.g.lib.FreeParams(s.params)
		if !s.params.IsNull() {
			logger.Panicf("native library did not release signature parameters")
		}
		runtime.SetFinalizer(s, nil)
	}
}
