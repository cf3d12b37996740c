package cli

import (
	"bytes"
	"crypto"
	"fmt"
	"time"

	"github.com/effective-security/xrpm/internal/testsig"
	"github.com/effective-security/xrpm/pgpsig"
)

func (s *testSuite) TestInspect() {
	created := time.Unix(1600000000, 0)
	raw := s.signer.MustSign([]byte("content"), testsig.Options{Created: created, Lifetime: 3600})
	armored, err := testsig.Armor(raw)
	s.Require().NoError(err)
	key, err := s.signer.ArmoredPublicKey()
	s.Require().NoError(err)

	sigFile := s.WriteFile("inspect.sig", raw)
	ascFile := s.WriteFile("inspect.asc", armored)
	keyFile := s.WriteFile("RPM-GPG-KEY-test", key)

	cmd := InspectCmd{Sig: sigFile}
	cmd.Time = "2020-09-13T13:00:00Z"
	s.Require().NoError(cmd.Run(s.ctl))
	res := s.JSON()
	s.Equal("binary", res["signature_type"])
	s.Equal("RSA", res["public_key_algorithm"])
	s.Equal("SHA256", res["hash_algorithm"])
	s.Equal("2020-09-13T12:26:40Z", res["created"])
	s.Equal("2020-09-13T13:26:40Z", res["expires"])
	s.Equal(fmt.Sprintf("%016X", s.signer.KeyID()), res["issuer_key_id"])
	s.Nil(res["issuer"])
	s.Nil(res["weak"])

	s.Out.Reset()
	cmd = InspectCmd{Sig: ascFile, Keyring: []string{keyFile}}
	cmd.Time = "none"
	s.Require().NoError(cmd.Run(s.ctl))
	res = s.JSON()
	s.Equal([]interface{}{"xrpm test <test@example.com>"}, res["issuer"])

	cmd = InspectCmd{Sig: sigFile}
	cmd.Time = "2020-09-13T14:00:00Z"
	err = cmd.Run(s.ctl)
	s.Require().Error(err)
	s.Equal(pgpsig.KindExpired, pgpsig.KindOf(err))

	cmd = InspectCmd{Sig: sigFile}
	cmd.Time = "2001-01-01T00:00:00Z"
	err = cmd.Run(s.ctl)
	s.Equal(pgpsig.KindNotYetValid, pgpsig.KindOf(err))

	cmd = InspectCmd{Sig: sigFile, Text: true}
	cmd.Time = "none"
	err = cmd.Run(s.ctl)
	s.Equal(pgpsig.KindMalformed, pgpsig.KindOf(err))

	cmd = InspectCmd{Sig: sigFile}
	cmd.Time = "yesterday"
	s.Error(cmd.Run(s.ctl))

	cmd = InspectCmd{Sig: s.WriteFile("empty.sig", nil)}
	err = cmd.Run(s.ctl)
	s.Equal(pgpsig.KindMalformed, pgpsig.KindOf(err))
}

func (s *testSuite) TestInspect_Stdin() {
	raw := s.signer.MustSign([]byte("content"), testsig.Options{Hash: crypto.SHA1, Text: true})
	s.ctl.WithReader(bytes.NewReader(raw))

	cmd := InspectCmd{Sig: "-", Text: true}
	err := cmd.Run(s.ctl)
	s.Equal(pgpsig.KindWeakHash, pgpsig.KindOf(err))

	allow := true
	s.ctl.WithReader(bytes.NewReader(raw))
	cmd.AllowWeak = &allow
	s.Require().NoError(cmd.Run(s.ctl))
	res := s.JSON()
	s.Equal("text", res["signature_type"])
	s.Equal("SHA1", res["hash_algorithm"])
	s.Equal(true, res["weak"])
}

func (s *testSuite) TestCheck() {
	content := bytes.Repeat([]byte("rpm payload "), 1000)
	contentFile := s.WriteFile("payload.rpm", content)
	sigFile := s.WriteFile("payload.sig", s.signer.MustSign(content, testsig.Options{Hash: crypto.SHA512}))

	cmd := CheckCmd{Sig: sigFile, Content: contentFile}
	s.Require().NoError(cmd.Run(s.ctl))
	res := s.JSON()
	s.Equal("go", res["engine"])
	s.Equal("RSA", res["public_key_algorithm"])
	s.Equal("SHA512", res["hash_algorithm"])
	s.Equal(float64(64), res["digest_length"])
	s.Equal(float64(len(content)), res["digested"])

	weak := s.WriteFile("weak.sig", s.signer.MustSign(content, testsig.Options{Hash: crypto.SHA1}))
	cmd = CheckCmd{Sig: weak, Content: contentFile}
	err := cmd.Run(s.ctl)
	s.Equal(pgpsig.KindWeakHash, pgpsig.KindOf(err))

	cfgFile := s.WriteFile("xrpm.yaml", []byte("allow_weak_hashes: true\nreference_time: none\n"))
	s.ctl.Cfg = cfgFile
	s.ctl.cfg = nil
	s.Out.Reset()
	s.Require().NoError(cmd.Run(s.ctl))
	s.HasText(`SHA1`)

	cmd = CheckCmd{Sig: sigFile, Content: s.tmpdir + "/missing"}
	s.Error(cmd.Run(s.ctl))
}

func (s *testSuite) TestConfig() {
	s.ctl.Cfg = s.tmpdir + "/missing.yaml"
	_, err := s.ctl.Config()
	s.Error(err)

	_, err = s.ctl.Token()
	s.Error(err)

	s.ctl.Cfg = s.WriteFile("bad.yaml", []byte("reference_time: [\n"))
	s.ctl.cfg = nil
	_, err = s.ctl.Config()
	s.Error(err)

	s.ctl.Cfg = ""
	s.ctl.cfg = nil
	cfg, err := s.ctl.Config()
	s.Require().NoError(err)
	s.Equal("go", cfg.EngineName())
}

func (s *testSuite) TestWriteJSON() {
	s.Require().NoError(s.ctl.WriteJSON(&CheckResult{Engine: "go", DigestLength: 32}))
	s.Equal("go", s.JSON()["engine"])
	s.True(bytes.HasSuffix(s.Out.Bytes(), []byte("}\n")))
}
