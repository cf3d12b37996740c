package rpmcrypto

import (
	"sync"
	"sync/atomic"

	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/config"
	"github.com/effective-security/xrpm/metricskey"
	"github.com/effective-security/xrpm/native"

	// register the default engine
	_ "github.com/effective-security/xrpm/native/goengine"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm", "rpmcrypto")

// gate is the process-wide state reached after initialization
type gate struct {
	lib    native.Library
	lock   *sync.Mutex
	frozen atomic.Bool
}

var (
	initOnce sync.Once
	current  atomic.Pointer[gate]
)

// InitToken proves that the native library has been initialized.
// Tokens are obtained from Init or InitWithConfig, and may be copied freely.
// The zero value is not a valid token: operations given one panic.
type InitToken struct {
	g *gate
}

func (t InitToken) mustGate() *gate {
	if t.g == nil {
		logger.Panicf("native library used without initialization")
	}
	return t.g
}

// Init initializes the default engine once for the process.
// A non-empty overridePath is pushed as the native database path override.
// Calls after the first one return a token without side effects.
func Init(overridePath string) InitToken {
	return InitWithConfig(&config.Config{ConfigOverride: overridePath})
}

// InitWithConfig initializes the configured engine once for the process.
// Only the configuration of the first call is used.
//
// Failures are fatal: the function panics if the engine cannot be loaded
// or configured, and keeps panicking on every later call.
func InitWithConfig(cfg *config.Config) InitToken {
	initOnce.Do(func() {
		current.Store(setup(cfg))
	})
	g := current.Load()
	if g == nil {
		logger.Panicf("native library initialization failed")
	}
	return InitToken{g: g}
}

func setup(cfg *config.Config) *gate {
	name := cfg.EngineName()
	lib, err := native.Load(name)
	if err != nil {
		logger.Panicf("unable to load engine %q: %+v", name, err)
	}

	g := &gate{
		lib:  lib,
		lock: new(sync.Mutex),
	}

	if err = lib.ReadConfigFiles(); err != nil {
		logger.Panicf("unable to read native configuration: %+v", err)
	}

	var override string
	if cfg != nil {
		override = cfg.ConfigOverride
	}
	if override != "" {
		err = lib.PushMacro(native.MacroDBPath, override, native.MacroLevelCmdline)
		if err != nil {
			logger.Panicf("unable to set %s: %+v", native.MacroDBPath, err)
		}
	}

	registerExitHook(g.freeze)

	metricskey.StatsGateInit.IncrCounter(1, lib.Name())
	logger.KV(xlog.NOTICE, "status", "initialized", "engine", lib.Name(), "override", override)
	return g
}

// freeze acquires the global lock and never releases it
func (g *gate) freeze() {
	if g.frozen.CompareAndSwap(false, true) {
		logger.KV(xlog.NOTICE, "status", "freezing", "engine", g.lib.Name())
		g.lock.Lock()
	}
}

// Freeze blocks all further native calls for the life of the process.
// It waits for a call in progress to complete.
// Freeze is a no-op before initialization.
func Freeze() {
	if g := current.Load(); g != nil {
		g.freeze()
	}
}

// Frozen returns true after Freeze
func Frozen() bool {
	g := current.Load()
	return g != nil && g.frozen.Load()
}
