package cli

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xrpm/gpg"
	"github.com/effective-security/xrpm/pgpsig"
)

// SignatureInfo is the printed form of a validated signature
type SignatureInfo struct {
	SignatureType      string   `json:"signature_type"`
	PublicKeyAlgorithm string   `json:"public_key_algorithm"`
	HashAlgorithm      string   `json:"hash_algorithm"`
	Weak               bool     `json:"weak,omitempty"`
	Created            string   `json:"created"`
	Expires            string   `json:"expires,omitempty"`
	IssuerKeyID        string   `json:"issuer_key_id,omitempty"`
	IssuerFingerprint  string   `json:"issuer_fingerprint,omitempty"`
	HashPrefix         string   `json:"hash_prefix"`
	Issuer             []string `json:"issuer,omitempty"`
}

// NewSignatureInfo returns the printed form of s
func NewSignatureInfo(s *pgpsig.Summary) *SignatureInfo {
	prefix := s.HashPrefix()
	info := &SignatureInfo{
		SignatureType:      s.SignatureType().String(),
		PublicKeyAlgorithm: s.PublicKeyAlgorithm().String(),
		HashAlgorithm:      s.HashAlgorithm().String(),
		Weak:               s.HashAlgorithm().IsWeak(),
		Created:            s.Created().UTC().Format(time.RFC3339),
		IssuerFingerprint:  hex.EncodeToString(s.IssuerFingerprint()),
		HashPrefix:         hex.EncodeToString(prefix[:]),
	}
	if exp, ok := s.Expiration(); ok && exp != 0 {
		info.Expires = s.Created().Add(time.Duration(exp) * time.Second).UTC().Format(time.RFC3339)
	}
	if id, ok := s.IssuerKeyID(); ok {
		info.IssuerKeyID = fmt.Sprintf("%016X", id)
	}
	return info
}

// InspectCmd validates a signature without calling the native library
type InspectCmd struct {
	Policy

	Sig     string   `arg:"" help:"Signature file, binary or armored; - for stdin"`
	Text    bool     `help:"Expect a text signature"`
	Keyring []string `help:"Armored keyring files to look up the issuer"`
}

// Run the command
func (a *InspectCmd) Run(ctx *Cli) error {
	cfg, err := ctx.Config()
	if err != nil {
		return err
	}
	refTime, allow, err := a.resolve(cfg, time.Now())
	if err != nil {
		return err
	}

	buf, err := ctx.ReadSignature(a.Sig)
	if err != nil {
		return err
	}

	expected := values.Select(a.Text, pgpsig.SignatureText, pgpsig.SignatureBinary)
	sum, err := pgpsig.Parse(buf, refTime, allow, expected)
	if err != nil {
		return err
	}

	info := NewSignatureInfo(sum)
	if len(a.Keyring) > 0 {
		kr, err := gpg.KeyRingFromFiles(a.Keyring)
		if err != nil {
			return err
		}
		if e := gpg.FindIssuer(kr, sum); e != nil {
			for name := range e.Identities {
				info.Issuer = append(info.Issuer, name)
			}
			sort.Strings(info.Issuer)
		}
	}

	return ctx.WriteJSON(info)
}
