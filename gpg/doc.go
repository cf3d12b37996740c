// Package gpg provides utilities for working with OpenPGP keys and signatures.
//
// This package supports:
//   - Loading armored public keyrings, such as /etc/pki/rpm-gpg
//   - Removing ASCII armor from detached signatures
//   - Finding the key that issued a validated signature
//
// Signature bytes are never interpreted here: they are validated by
// package pgpsig, and this package only works on the resulting summary.
package gpg
