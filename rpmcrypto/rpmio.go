//go:build cgo && rpmio

package rpmcrypto

import (
	// register the librpmio engine
	_ "github.com/effective-security/xrpm/native/rpmio"
)
