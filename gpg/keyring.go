package gpg

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xrpm", "gpg")

var beginArmor = []byte("-----BEGIN PGP ")

// KeyRing reads public keys from the armored blocks in data.
// Blocks of other types are skipped.
func KeyRing(data []byte) (openpgp.EntityList, error) {
	keyring := make(openpgp.EntityList, 0)

	for _, chunk := range splitArmor(data) {
		block, err := armor.Decode(bytes.NewReader(chunk))
		if err != nil {
			return nil, errors.WithMessage(err, "failed to decode armor")
		}

		if block.Type != openpgp.PublicKeyType {
			logger.KV(xlog.TRACE, "reason", "skip_block", "type", block.Type)
			continue
		}

		// extract keys
		el, err := openpgp.ReadKeyRing(block.Body)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		// append keyring
		keyring = append(keyring, el...)
	}

	return keyring, nil
}

// splitArmor returns data cut at the start of each armored block
func splitArmor(data []byte) [][]byte {
	var chunks [][]byte
	start := bytes.Index(data, beginArmor)
	if start < 0 {
		logger.KV(xlog.TRACE, "reason", "no_block", "size", len(data))
		return nil
	}
	data = data[start:]
	for {
		next := bytes.Index(data[len(beginArmor):], beginArmor)
		if next < 0 {
			return append(chunks, data)
		}
		next += len(beginArmor)
		chunks = append(chunks, data[:next])
		data = data[next:]
	}
}

// KeyRingFromFile reads an armored keyring from the given file path
func KeyRingFromFile(path string) (openpgp.EntityList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	k, err := KeyRing(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to load keyring: %s", path)
	}

	return k, nil
}

// KeyRingFromFiles reads armored keyrings from the given file paths.
//
// This function might typically be used to read all keys in /etc/pki/rpm-gpg.
func KeyRingFromFiles(files []string) (openpgp.EntityList, error) {
	keyring := make(openpgp.EntityList, 0)
	for _, path := range files {
		// read keyring in file
		el, err := KeyRingFromFile(path)
		if err != nil {
			return nil, err
		}

		// append keyring
		keyring = append(keyring, el...)
	}

	return keyring, nil
}
