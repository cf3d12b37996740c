//go:build cgo && rpmio

// Package rpmio implements native.Library over librpm and librpmio.
//
// Build with `-tags rpmio`. The package registers the "rpmio" engine.
// Nothing here validates input: callers must go through package rpmcrypto.
package rpmio

/*
#cgo pkg-config: rpm
#include <stdint.h>
#include <stdlib.h>
#include <rpm/rpmlib.h>
#include <rpm/rpmmacro.h>
#include <rpm/rpmpgp.h>
#include <rpm/rpmcrypto.h>

static unsigned int xrpm_params_algo(uintptr_t digp, unsigned int kind) {
	return pgpDigParamsAlgo((pgpDigParams)digp, kind);
}

static uintptr_t xrpm_params_free(uintptr_t digp) {
	return (uintptr_t)pgpDigParamsFree((pgpDigParams)digp);
}

static int xrpm_prt_params(const uint8_t *pkts, size_t len, unsigned int tag, uintptr_t *ret) {
	pgpDigParams digp = NULL;
	int rc = pgpPrtParams(pkts, len, tag, &digp);
	*ret = (uintptr_t)digp;
	return rc;
}

static uintptr_t xrpm_digest_init(int algo) {
	return (uintptr_t)rpmDigestInit(algo, RPMDIGEST_NONE);
}

static void xrpm_digest_update(uintptr_t ctx, const void *data, size_t len) {
	rpmDigestUpdate((DIGEST_CTX)ctx, data, len);
}

static void xrpm_digest_free(uintptr_t ctx) {
	rpmDigestFinal((DIGEST_CTX)ctx, NULL, NULL, 0);
}
*/
import "C"

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/native"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm/native", "rpmio")

// Name of the engine in the native registry
const Name = "rpmio"

func init() {
	_ = native.Register(Name, Load)
}

// Load returns the librpmio engine
func Load() (native.Library, error) {
	return &Engine{}, nil
}

// Engine calls librpmio. It holds no state: all state lives in the library.
type Engine struct{}

// ensure compiles
var _ native.Library = (*Engine)(nil)

// Name returns the engine name
func (e *Engine) Name() string {
	return Name
}

// ReadConfigFiles calls rpmReadConfigFiles with the default files
func (e *Engine) ReadConfigFiles() error {
	if rc := C.rpmReadConfigFiles(nil, nil); rc != 0 {
		return errors.Errorf("rpmReadConfigFiles failed: %d", int(rc))
	}
	return nil
}

// PushMacro calls rpmPushMacro on the global macro context
func (e *Engine) PushMacro(name, value string, level int) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	cvalue := C.CString(value)
	defer C.free(unsafe.Pointer(cvalue))

	if rc := C.rpmPushMacro(nil, cname, nil, cvalue, C.int(level)); rc != 0 {
		return errors.Errorf("rpmPushMacro %s failed: %d", name, int(rc))
	}
	logger.KV(xlog.DEBUG, "macro", name, "value", value, "level", level)
	return nil
}

// ParseParams calls pgpPrtParams
func (e *Engine) ParseParams(pkt []byte, tag native.PacketTag) (native.Ptr, error) {
	if len(pkt) == 0 {
		return 0, errors.New("empty packet")
	}
	var ret C.uintptr_t
	rc := C.xrpm_prt_params((*C.uint8_t)(unsafe.Pointer(&pkt[0])), C.size_t(len(pkt)), C.uint(tag), &ret)
	if rc != 0 {
		if ret != 0 {
			C.xrpm_params_free(ret)
		}
		return 0, errors.Errorf("pgpPrtParams failed: %d", int(rc))
	}
	return native.Ptr(ret), nil
}

// ParamsAlgo calls pgpDigParamsAlgo
func (e *Engine) ParamsAlgo(params native.Ptr, kind native.AlgoKind) uint {
	return uint(C.xrpm_params_algo(C.uintptr_t(params), C.uint(kind)))
}

// FreeParams calls pgpDigParamsFree
func (e *Engine) FreeParams(params native.Ptr) native.Ptr {
	if params.IsNull() {
		return 0
	}
	return native.Ptr(C.xrpm_params_free(C.uintptr_t(params)))
}

// DigestInit calls rpmDigestInit
func (e *Engine) DigestInit(algo uint8) native.Ptr {
	return native.Ptr(C.xrpm_digest_init(C.int(algo)))
}

// DigestUpdate calls rpmDigestUpdate
func (e *Engine) DigestUpdate(ctx native.Ptr, data []byte) {
	if len(data) == 0 {
		return
	}
	C.xrpm_digest_update(C.uintptr_t(ctx), unsafe.Pointer(&data[0]), C.size_t(len(data)))
}

// DigestFree releases the context with rpmDigestFinal, discarding the result
func (e *Engine) DigestFree(ctx native.Ptr) {
	if ctx.IsNull() {
		return
	}
	C.xrpm_digest_free(C.uintptr_t(ctx))
}

// DigestLength calls rpmDigestLength
func (e *Engine) DigestLength(algo uint8) int {
	return int(C.rpmDigestLength(C.int(algo)))
}
