package rpmcrypto

import (
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/metricskey"
	"github.com/effective-security/xrpm/native"
	"github.com/effective-security/xrpm/pgpsig"
)

// DigestCtx owns a native running hash
type DigestCtx struct {
	g     *gate
	ctx   native.Ptr
	algo  pgpsig.HashAlgorithm
	allow pgpsig.AllowWeakHashes
}

// NewDigestCtx creates a digest context for algo.
// Unknown algorithms, and weak algorithms not allowed by the policy,
// are rejected with ErrUnknownAlgorithm and ErrWeakHash.
func NewDigestCtx(algo pgpsig.HashAlgorithm, allow pgpsig.AllowWeakHashes, token InitToken) (*DigestCtx, error) {
	g := token.mustGate()

	g.lock.Lock()
	defer g.lock.Unlock()

	return newDigestCtx(g, algo, allow)
}

// newDigestCtx must be called with the global lock held
func newDigestCtx(g *gate, algo pgpsig.HashAlgorithm, allow pgpsig.AllowWeakHashes) (*DigestCtx, error) {
	defer metricskey.PerfDigestInit.MeasureSince(time.Now(), g.lib.Name(), algo.String())

	var err error
	switch {
	case !algo.IsKnown():
		err = errors.Wrapf(pgpsig.ErrUnknownAlgorithm, "digest %s", algo)
	case algo.IsWeak() && !bool(allow):
		err = errors.Wrapf(pgpsig.ErrWeakHash, "digest %s", algo)
	}
	if err != nil {
		metricskey.StatsSignatureRejected.IncrCounter(1, pgpsig.KindOf(err).String())
		return nil, err
	}

	ctx := g.lib.DigestInit(uint8(algo))
	if ctx.IsNull() {
		logger.KV(xlog.WARNING, "reason", "native", "algorithm", algo.String())
		return nil, errors.Wrapf(pgpsig.ErrUnknownAlgorithm, "digest %s not supported by %s", algo, g.lib.Name())
	}

	d := &DigestCtx{
		g:     g,
		ctx:   ctx,
		algo:  algo,
		allow: allow,
	}
	runtime.SetFinalizer(d, (*DigestCtx).Close)
	return d, nil
}

// Update adds data to the running hash.
// Any split of the data into chunks yields the same state.
func (d *DigestCtx) Update(data []byte) {
	if d == nil || d.ctx.IsNull() {
		logger.Panicf("use of closed digest context")
	}
	d.g.lib.DigestUpdate(d.ctx, data)
}

// Write implements io.Writer
func (d *DigestCtx) Write(p []byte) (int, error) {
	d.Update(p)
	return len(p), nil
}

// Algorithm returns the hash algorithm
func (d *DigestCtx) Algorithm() pgpsig.HashAlgorithm {
	return d.algo
}

// AllowWeakHashes returns the policy the context was created with
func (d *DigestCtx) AllowWeakHashes() pgpsig.AllowWeakHashes {
	return d.allow
}

// Close releases the native context.
// It is safe to call Close more than once. After Freeze, Close blocks forever.
func (d *DigestCtx) Close() error {
	if d == nil || d.g == nil {
		return nil
	}
	d.g.lock.Lock()
	defer d.g.lock.Unlock()
	d.closeLocked()
	return nil
}

func (d *DigestCtx) closeLocked() {
	if !d.ctx.IsNull() {
		d.g.lib.DigestFree(d.ctx)
		d.ctx = 0
		runtime.SetFinalizer(d, nil)
	}
}

// HashLen returns the digest size of algo, or zero if it is not supported
func HashLen(algo pgpsig.HashAlgorithm, token InitToken) int {
	g := token.mustGate()
	if !algo.IsKnown() {
		return 0
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	return g.lib.DigestLength(uint8(algo))
}
