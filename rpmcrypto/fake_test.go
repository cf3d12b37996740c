package rpmcrypto

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xrpm/config"
	"github.com/effective-security/xrpm/native"
	"github.com/effective-security/xrpm/native/goengine"
)

const fakeName = "fake"

// activeFake is returned by the fake engine loader
var activeFake *fakeLib

func init() {
	_ = native.Register(fakeName, func() (native.Library, error) {
		if activeFake == nil {
			return nil, errors.New("fake engine is not set")
		}
		return activeFake, nil
	})
}

// fakeLib counts calls into the go engine and injects failures
type fakeLib struct {
	*goengine.Engine

	configLoads atomic.Int32
	parses      atomic.Int32

	failConfig   bool
	failMacro    bool
	failParse    bool
	nullParams   bool
	nullDigest   bool
	hashOverride uint

	lock sync.Mutex
	data map[native.Ptr]*bytes.Buffer
}

func newFake() *fakeLib {
	return &fakeLib{
		Engine: goengine.New(),
		data:   make(map[native.Ptr]*bytes.Buffer),
	}
}

func (f *fakeLib) Name() string {
	return fakeName
}

func (f *fakeLib) ReadConfigFiles() error {
	f.configLoads.Add(1)
	if f.failConfig {
		return errors.New("config failed")
	}
	return f.Engine.ReadConfigFiles()
}

func (f *fakeLib) PushMacro(name, value string, level int) error {
	if f.failMacro {
		return errors.New("macro failed")
	}
	return f.Engine.PushMacro(name, value, level)
}

func (f *fakeLib) ParseParams(pkt []byte, tag native.PacketTag) (native.Ptr, error) {
	f.parses.Add(1)
	if f.failParse {
		return 0, errors.New("parse failed")
	}
	if f.nullParams {
		return 0, nil
	}
	return f.Engine.ParseParams(pkt, tag)
}

func (f *fakeLib) ParamsAlgo(params native.Ptr, kind native.AlgoKind) uint {
	if kind == native.AlgoHash && f.hashOverride != 0 {
		return f.hashOverride
	}
	return f.Engine.ParamsAlgo(params, kind)
}

func (f *fakeLib) DigestInit(algo uint8) native.Ptr {
	if f.nullDigest {
		return 0
	}
	ctx := f.Engine.DigestInit(algo)
	f.lock.Lock()
	f.data[ctx] = new(bytes.Buffer)
	f.lock.Unlock()
	return ctx
}

func (f *fakeLib) DigestUpdate(ctx native.Ptr, data []byte) {
	f.Engine.DigestUpdate(ctx, data)
	f.lock.Lock()
	f.data[ctx].Write(data)
	f.lock.Unlock()
}

// digested returns the bytes fed to the context
func (f *fakeLib) digested(ctx native.Ptr) []byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.data[ctx].Bytes()
}

// resetGate returns the package to the uninitialized state
func resetGate() {
	initOnce = sync.Once{}
	current.Store(nil)

	hooksLock.Lock()
	exitHooks = nil
	hooksLock.Unlock()
}

// initFake initializes the gate with f
func initFake(t *testing.T, f *fakeLib) InitToken {
	resetGate()
	activeFake = f
	t.Cleanup(func() {
		resetGate()
		activeFake = nil
	})
	return InitWithConfig(&config.Config{Engine: fakeName})
}
