// Package pgpsig validates untrusted OpenPGP signature packets.
//
// The parser is purely structural: it never performs cryptography and never
// calls into native code. A successful Parse returns a Summary, and the
// existence of a Summary means that the buffer it was parsed from is a single,
// well-formed version 4 signature packet of the expected type, using known
// algorithms, permitted by the weak-hash policy and, when a reference time is
// given, currently valid.
//
// Rejections are reported with the sentinel kinds of this package:
//   - ErrMalformed
//   - ErrWeakHash
//   - ErrExpired
//   - ErrNotYetValid
//   - ErrUnknownAlgorithm
//
// Use errors.Is, or KindOf, to classify an error.
package pgpsig
