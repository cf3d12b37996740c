// Package rpmcrypto guards a native OpenPGP library against untrusted input.
//
// Every buffer is validated by package pgpsig before the native library
// sees it, and every native fact is cross-checked against the independent
// parse. The native library is initialized once per process with Init,
// which returns the InitToken required by all other operations.
//
// Construction of native resources is serialized by a single global lock.
// Streaming bytes into a digest context is not: a context must be used by
// one goroutine at a time.
//
// Disagreements between the validator and the native library are fatal
// and reported by panic, not by error.
//
// Processes that use the package should terminate through Exit, which
// freezes the native library so no goroutine is left inside a native call
// while the process tears down. After the freeze, every call that needs the
// lock blocks forever. This includes Close, and therefore the finalizers of
// handles that were never closed: the runtime finalizer goroutine parks on
// the first one, and no other finalizer in the process runs after it.
// Close handles explicitly before Exit if other finalizers matter.
package rpmcrypto
