package pgpsig

import (
	"github.com/cockroachdb/errors"
)

// Rejection kinds. Errors returned by Parse wrap exactly one of them.
var (
	ErrMalformed        = errors.New("malformed signature")
	ErrWeakHash         = errors.New("weak hash algorithm not allowed")
	ErrExpired          = errors.New("signature expired")
	ErrNotYetValid      = errors.New("signature created in the future")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// ErrorKind classifies a validation error
type ErrorKind int

// Error kinds
const (
	KindNone ErrorKind = iota
	KindMalformed
	KindWeakHash
	KindExpired
	KindNotYetValid
	KindUnknownAlgorithm
	KindOther
)

var kindNames = [...]string{
	KindNone:             "none",
	KindMalformed:        "malformed",
	KindWeakHash:         "weak_hash",
	KindExpired:          "expired",
	KindNotYetValid:      "not_yet_valid",
	KindUnknownAlgorithm: "unknown_algorithm",
	KindOther:            "other",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "other"
	}
	return kindNames[k]
}

// KindOf returns the kind of a validation error
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrWeakHash):
		return KindWeakHash
	case errors.Is(err, ErrExpired):
		return KindExpired
	case errors.Is(err, ErrNotYetValid):
		return KindNotYetValid
	case errors.Is(err, ErrUnknownAlgorithm):
		return KindUnknownAlgorithm
	}
	return KindOther
}

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}
