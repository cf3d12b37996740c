// Package goengine implements native.Library in Go.
//
// Signature packets are decoded with golang.org/x/crypto/openpgp/packet,
// a parser independent from package pgpsig, so the algorithm cross-check
// performed by rpmcrypto compares two separate implementations.
// Handles are table backed: a freed or unknown handle is never dereferenced.
package goengine

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/native"
	pgperrors "golang.org/x/crypto/openpgp/errors"
	"golang.org/x/crypto/openpgp/packet"
	"golang.org/x/crypto/openpgp/s2k"
	"golang.org/x/crypto/ripemd160"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm/native", "goengine")

// Name of the engine in the native registry
const Name = "go"

func init() {
	_ = native.Register(Name, Load)
}

// Load returns a new engine
func Load() (native.Library, error) {
	return New(), nil
}

var hashes = map[uint8]func() hash.Hash{
	1:  md5.New,
	2:  sha1.New,
	3:  ripemd160.New,
	8:  sha256.New,
	9:  sha512.New384,
	10: sha512.New,
	11: sha256.New224,
}

type params struct {
	sigType uint8
	pubKey  uint8
	hash    uint8
}

type digest struct {
	algo uint8
	h    hash.Hash
}

// Engine is an in-process native.Library
type Engine struct {
	lock       sync.Mutex
	last       native.Ptr
	configured bool
	macros     map[string]string
	params     map[native.Ptr]*params
	digests    map[native.Ptr]*digest
}

// ensure compiles
var _ native.Library = (*Engine)(nil)

// New returns a new engine
func New() *Engine {
	return &Engine{
		macros:  make(map[string]string),
		params:  make(map[native.Ptr]*params),
		digests: make(map[native.Ptr]*digest),
	}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return Name
}

// ReadConfigFiles marks the engine as configured
func (e *Engine) ReadConfigFiles() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.configured = true
	return nil
}

// Configured returns true after ReadConfigFiles
func (e *Engine) Configured() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.configured
}

// PushMacro defines a macro
func (e *Engine) PushMacro(name, value string, level int) error {
	if name == "" {
		return errors.New("macro name is required")
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	e.macros[name] = value
	logger.KV(xlog.DEBUG, "macro", name, "value", value, "level", level)
	return nil
}

// Macro returns the value of a macro
func (e *Engine) Macro(name string) (string, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	v, ok := e.macros[name]
	return v, ok
}

// ParseParams parses a single packet and returns a handle to its parameters
func (e *Engine) ParseParams(pkt []byte, tag native.PacketTag) (native.Ptr, error) {
	rd := packet.NewOpaqueReader(bytes.NewReader(pkt))
	op, err := rd.Next()
	if err != nil {
		return 0, errors.WithMessage(err, "failed to read packet")
	}
	if native.PacketTag(op.Tag) != tag {
		return 0, errors.Errorf("expected packet tag %d, got %d", tag, op.Tag)
	}
	if _, err = rd.Next(); err != io.EOF {
		return 0, errors.Errorf("trailing data after packet")
	}
	if tag != native.TagSignature {
		return 0, errors.Errorf("unsupported packet tag %d", tag)
	}

	p, err := parseSignature(op)
	if err != nil {
		return 0, err
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	e.last++
	e.params[e.last] = p
	return e.last, nil
}

func parseSignature(op *packet.OpaquePacket) (*params, error) {
	c := op.Contents
	if len(c) < 4 {
		return nil, errors.Errorf("short signature packet")
	}
	if c[0] != 4 {
		return nil, errors.Errorf("unsupported signature version %d", c[0])
	}
	p := &params{
		sigType: c[1],
		pubKey:  c[2],
		hash:    c[3],
	}

	typed, err := op.Parse()
	if err != nil {
		var unsupported pgperrors.UnsupportedError
		if errors.As(err, &unsupported) {
			// x/crypto does not decode every algorithm; the framing
			// and the fixed header are all that is needed here
			logger.KV(xlog.DEBUG, "reason", "unsupported", "pubkey", p.pubKey, "hash", p.hash, "err", err.Error())
			return p, nil
		}
		return nil, errors.WithMessage(err, "failed to parse signature")
	}

	sig, ok := typed.(*packet.Signature)
	if !ok {
		return nil, errors.Errorf("unexpected packet %T", typed)
	}
	hashID, ok := s2k.HashToHashId(sig.Hash)
	if !ok || hashID != p.hash || uint8(sig.PubKeyAlgo) != p.pubKey || uint8(sig.SigType) != p.sigType {
		return nil, errors.Errorf("inconsistent signature parameters")
	}
	return p, nil
}

// ParamsAlgo returns the algorithm of the given kind
func (e *Engine) ParamsAlgo(h native.Ptr, kind native.AlgoKind) uint {
	e.lock.Lock()
	p := e.params[h]
	e.lock.Unlock()

	if p == nil {
		logger.Panicf("invalid params handle: %d", h)
	}
	switch kind {
	case native.AlgoPubKey:
		return uint(p.pubKey)
	case native.AlgoHash:
		return uint(p.hash)
	}
	return 0
}

// FreeParams releases the parameters
func (e *Engine) FreeParams(h native.Ptr) native.Ptr {
	if h.IsNull() {
		return 0
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	if _, ok := e.params[h]; !ok {
		logger.Panicf("double free of params handle: %d", h)
	}
	delete(e.params, h)
	return 0
}

// DigestInit creates a digest context, or returns null for unsupported algorithms
func (e *Engine) DigestInit(algo uint8) native.Ptr {
	newHash, ok := hashes[algo]
	if !ok {
		return 0
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	e.last++
	e.digests[e.last] = &digest{algo: algo, h: newHash()}
	return e.last
}

// DigestUpdate feeds data into the digest context
func (e *Engine) DigestUpdate(ctx native.Ptr, data []byte) {
	e.lock.Lock()
	d := e.digests[ctx]
	e.lock.Unlock()

	if d == nil {
		logger.Panicf("invalid digest handle: %d", ctx)
	}
	_, _ = d.h.Write(data)
}

// DigestFree releases the digest context
func (e *Engine) DigestFree(ctx native.Ptr) {
	if ctx.IsNull() {
		return
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	if _, ok := e.digests[ctx]; !ok {
		logger.Panicf("double free of digest handle: %d", ctx)
	}
	delete(e.digests, ctx)
}

// DigestLength returns the output size of the hash algorithm
func (e *Engine) DigestLength(algo uint8) int {
	if newHash, ok := hashes[algo]; ok {
		return newHash().Size()
	}
	return 0
}

// Live returns the number of allocated params and digest handles
func (e *Engine) Live() (params int, digests int) {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.params), len(e.digests)
}
