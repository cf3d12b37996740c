package rpmcrypto

import (
	"os"
	"sync"
)

var (
	hooksLock sync.Mutex
	exitHooks []func()

	osExit = os.Exit
)

func registerExitHook(hook func()) {
	hooksLock.Lock()
	defer hooksLock.Unlock()
	exitHooks = append(exitHooks, hook)
}

// Exit runs the exit hooks in reverse order of registration, then
// terminates the process with the given code.
// Once the native library is initialized, Exit freezes it before exiting.
func Exit(code int) {
	hooksLock.Lock()
	hooks := append([]func(){}, exitHooks...)
	hooksLock.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
	osExit(code)
}
