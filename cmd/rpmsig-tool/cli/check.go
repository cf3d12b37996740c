package cli

import (
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/effective-security/xrpm/rpmcrypto"
)

// CheckResult is the printed result of the check command
type CheckResult struct {
	Engine             string `json:"engine"`
	PublicKeyAlgorithm string `json:"public_key_algorithm"`
	HashAlgorithm      string `json:"hash_algorithm"`
	DigestLength       int    `json:"digest_length"`
	Digested           int64  `json:"digested"`
}

// CheckCmd passes a signature to the native library and digests the signed content
type CheckCmd struct {
	Policy

	Sig     string `arg:"" help:"Signature file, binary or armored; - for stdin"`
	Content string `required:"" help:"Signed content file" type:"existingfile"`
}

// Run the command
func (a *CheckCmd) Run(ctx *Cli) error {
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

	token, err := ctx.Token()
	if err != nil {
		return err
	}

	sig, err := rpmcrypto.Parse(buf, refTime, allow, token)
	if err != nil {
		return err
	}
	defer sig.Close()

	f, err := os.Open(a.Content)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	n, err := io.Copy(sig, f)
	if err != nil {
		return errors.WithMessagef(err, "failed to read %s", a.Content)
	}
	logger.KV(xlog.DEBUG, "content", a.Content, "digested", n)

	return ctx.WriteJSON(&CheckResult{
		Engine:             cfg.EngineName(),
		PublicKeyAlgorithm: sig.PublicKeyAlgorithm().String(),
		HashAlgorithm:      sig.HashAlgorithm().String(),
		DigestLength:       rpmcrypto.HashLen(sig.HashAlgorithm(), token),
		Digested:           n,
	})
}
