package commands

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowlabs-org/vts/client"
	"github.com/glowlabs-org/vts/server"
	"github.com/glowlabs-org/vts/vts"
)

// run executes the command tree with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestKeyCommand(t *testing.T) {
	vs, _, err := server.SetupTestEnvironment(t.Name())
	require.NoError(t, err)
	defer vs.Close()

	dir := vts.GenerateTestDir(t.Name())
	keyPath := filepath.Join(dir, "key.json")
	out, err := run(t, "--server", vs.Addr(), "key", "--out", keyPath)
	require.NoError(t, err)

	pub := vs.PublicKey()
	assert.Contains(t, out, base64.StdEncoding.EncodeToString(pub[:]))
	vk, err := client.LoadKey(keyPath)
	require.NoError(t, err)
	decoded, err := client.DecodePublicKey(vk)
	require.NoError(t, err)
	assert.Equal(t, pub, decoded)
}

func TestSignAndVerifyCommands(t *testing.T) {
	vs, _, err := server.SetupTestEnvironment(t.Name())
	require.NoError(t, err)
	defer vs.Close()

	dir := vts.GenerateTestDir(t.Name())
	keyPath := filepath.Join(dir, "key.json")
	receiptPath := filepath.Join(dir, "receipt.json")
	sigPath := filepath.Join(dir, "receipt.sig")

	_, err = run(t, "--server", vs.Addr(), "key", "--out", keyPath)
	require.NoError(t, err)
	out, err := run(t, "--server", vs.Addr(), "sign", "Smoke test", "--out", receiptPath, "--sig-file", sigPath, "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "Signature verified")

	sig, err := vts.ReadSignatureFile(sigPath)
	require.NoError(t, err)
	st, err := client.LoadReceipt(receiptPath)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(sig[:]), st.Signature)

	// Offline verification works with the saved key, the bare key and the
	// raw signature file.
	out, err = run(t, "verify", "--receipt", receiptPath, "--key", keyPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Signature is valid")

	vk, err := client.LoadKey(keyPath)
	require.NoError(t, err)
	_, err = run(t, "verify", "--receipt", receiptPath, "--public-key", vk.PublicKey, "--sig-file", sigPath)
	require.NoError(t, err)

	// A tampered receipt fails.
	st.Message = "Smoke tesT"
	require.NoError(t, client.SaveReceipt(receiptPath, st))
	_, err = run(t, "verify", "--receipt", receiptPath, "--key", keyPath)
	assert.ErrorIs(t, err, errNotVerified)
}

func TestVerifyWrongKey(t *testing.T) {
	vs, _, err := server.SetupTestEnvironment(t.Name())
	require.NoError(t, err)
	defer vs.Close()

	dir := vts.GenerateTestDir(t.Name())
	receiptPath := filepath.Join(dir, "receipt.json")
	_, err = run(t, "--server", vs.Addr(), "sign", "hello", "--out", receiptPath)
	require.NoError(t, err)

	other, err := vts.GenerateKeyPair()
	require.NoError(t, err)
	otherPub := other.PublicKey()
	_, err = run(t, "verify", "--receipt", receiptPath, "--public-key", base64.StdEncoding.EncodeToString(otherPub[:]))
	assert.ErrorIs(t, err, errNotVerified)

	_, err = run(t, "verify", "--receipt", receiptPath, "--public-key", "not base64")
	assert.ErrorIs(t, err, errNotVerified)
}

func TestVerifyFlagErrors(t *testing.T) {
	_, err := run(t, "verify")
	assert.Error(t, err)
	_, err = run(t, "verify", "--receipt", "r.json")
	assert.Error(t, err)
	_, err = run(t, "verify", "--receipt", "r.json", "--key", "k.json", "--public-key", "abc")
	assert.Error(t, err)
	_, err = run(t, "sign")
	assert.Error(t, err)
}

func TestKeygenCommand(t *testing.T) {
	dir := vts.GenerateTestDir(t.Name())

	out, err := run(t, "keygen", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Generated new key pair")
	first := lastLine(out)

	out, err = run(t, "keygen", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Key pair already exists")
	assert.Equal(t, first, lastLine(out))

	// A lone private key is refused, never replaced.
	require.NoError(t, os.Remove(filepath.Join(dir, vts.DefaultPublicKeyFile)))
	_, err = run(t, "keygen", "--dir", dir)
	assert.ErrorIs(t, err, vts.ErrStorage)
}

func TestServerFlagFromEnv(t *testing.T) {
	t.Setenv(EnvServer, "http://example.invalid:1")
	root := NewRoot()
	flag := root.PersistentFlags().Lookup("server")
	require.NotNil(t, flag)
	assert.Equal(t, "http://example.invalid:1", flag.DefValue)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
