package gpg

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xrpm/pgpsig"
	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

// Dearmor returns the binary form of an armored signature.
// Data that is not armored is returned unchanged.
func Dearmor(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), beginArmor) {
		return data, nil
	}

	block, err := armor.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to decode armor")
	}
	if block.Type != openpgp.SignatureType {
		return nil, errors.Errorf("unexpected armor type: %q", block.Type)
	}

	// the checksum is verified at EOF
	raw, err := io.ReadAll(block.Body)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read armor")
	}
	return raw, nil
}

// FindIssuer returns the entity holding the key that issued the signature,
// or nil if the keyring does not have it.
// The issuer fingerprint takes precedence over the issuer key ID.
func FindIssuer(keyring openpgp.EntityList, sum *pgpsig.Summary) *openpgp.Entity {
	if fp := sum.IssuerFingerprint(); len(fp) > 0 {
		for _, e := range keyring {
			if bytes.Equal(e.PrimaryKey.Fingerprint[:], fp) {
				return e
			}
			for _, sub := range e.Subkeys {
				if bytes.Equal(sub.PublicKey.Fingerprint[:], fp) {
					return e
				}
			}
		}
		return nil
	}

	id, ok := sum.IssuerKeyID()
	if !ok {
		return nil
	}
	if keys := keyring.KeysById(id); len(keys) > 0 {
		return keys[0].Entity
	}
	return nil
}
