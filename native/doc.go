// Package native defines the boundary to a native OpenPGP/digest library.
//
// A Library mirrors the small part of librpmio used for signature intake:
// configuration loading, macro overrides, signature parameter parsing,
// algorithm queries, and digest contexts. Resources are referred to by opaque
// Ptr handles that the library owns; a zero Ptr is null.
//
// Implementations are NOT assumed to be safe for concurrent use, and
// NOT assumed to be safe on malformed input. Callers must validate input
// and serialize calls; see package rpmcrypto.
//
// Engines register a Loader by name, the same way crypto providers register
// with cryptoprov:
//
//	func init() {
//		_ = native.Register("rpmio", Load)
//	}
package native
