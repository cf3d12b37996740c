package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/xrpm/internal/testsig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(t *testing.T) {
	out := bytes.NewBuffer([]byte{})
	errout := bytes.NewBuffer([]byte{})
	rc := 0
	exit := func(c int) {
		rc = c
	}

	realMain([]string{"rpmsig-tool", "version"}, out, errout, exit)
	assert.Equal(t, 80, rc)
	assert.Equal(t, "rpmsig-tool: error: unexpected argument version\n", errout.String())
	assert.Empty(t, out.String())
}

func TestMain_Inspect(t *testing.T) {
	signer := testsig.MustShared()
	sig := filepath.Join(t.TempDir(), "content.sig")
	require.NoError(t, os.WriteFile(sig, signer.MustSign([]byte("content"), testsig.Options{}), 0600))

	out := bytes.NewBuffer([]byte{})
	errout := bytes.NewBuffer([]byte{})
	rc := 0
	exit := func(c int) {
		rc = c
	}

	realMain([]string{"rpmsig-tool", "inspect", sig}, out, errout, exit)
	assert.Equal(t, 0, rc)
	assert.Empty(t, errout.String())

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "RSA", res["public_key_algorithm"])
	assert.Equal(t, "SHA256", res["hash_algorithm"])

	out.Reset()
	realMain([]string{"rpmsig-tool", "inspect", "--text", sig}, out, errout, exit)
	assert.Equal(t, 1, rc)
	assert.Contains(t, errout.String(), "malformed signature")
}
