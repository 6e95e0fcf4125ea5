package server

// testing.go contains a bunch of exported functions that are useful for
// testing, but are really only intended to be used for testing.

import (
	"fmt"

	"github.com/glowlabs-org/vts/vts"
)

// Ports returns the port that the http listener for this server is listening
// on.
func (vs *VTSServer) Ports() (httpPort uint16) {
	return vs.httpPort
}

// Addr returns the base URL of the API.
func (vs *VTSServer) Addr() string {
	return fmt.Sprintf("http://127.0.0.1:%v", vs.httpPort)
}

// PublicKey returns the public key of this server.
func (vs *VTSServer) PublicKey() vts.PublicKey {
	return vs.staticSigner.PublicKey()
}

// BaseDir returns the base dir of the server.
func (vs *VTSServer) BaseDir() string {
	return vs.baseDir
}

// Config returns the config the server was started with.
func (vs *VTSServer) Config() Config {
	return vs.staticConfig
}

// CheckInvariants is a function which will ensure that the server state is
// self-consistent. If something is broken, it means the struct has corrupted
// and a panic is necessary to prevent bad signatures from being handed out.
//
// This function is primarily used during testing, but doesn't hurt to run
// occasionally in prod.
func (vs *VTSServer) CheckInvariants() {
	if vs.staticSigner == nil {
		panic("server has no signer")
	}
	probe := []byte("invariant probe")
	signed, err := vs.staticSigner.Sign(probe)
	if err != nil {
		panic(fmt.Sprintf("signer is unable to sign: %v", err))
	}
	if !signed.Verify(vs.staticSigner.PublicKey()) {
		panic("signer produced a signature that does not verify under its own key")
	}
	if _, err := vts.ParseTimestamp(signed.Timestamp); err != nil {
		panic(fmt.Sprintf("signer produced a non canonical timestamp: %v", err))
	}
}

// TestConfig returns a config suitable for tests: a local ephemeral port,
// debug logging, metrics on and no rate limiting.
func TestConfig(dir string) Config {
	cfg := DefaultConfig(dir)
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.LogLevel = DEBUG.String()
	cfg.MetricsEnabled = true
	cfg.SignRateLimit = 0
	return cfg
}

// SetupTestEnvironment will return a fully initialized server that is ready
// to be used.
func SetupTestEnvironment(testName string) (vs *VTSServer, dir string, err error) {
	return SetupTestEnvironmentWithConfig(testName, nil)
}

// SetupTestEnvironmentWithConfig is the same as SetupTestEnvironment, except
// that modify gets a chance to change the config before the server starts.
func SetupTestEnvironmentWithConfig(testName string, modify func(*Config)) (vs *VTSServer, dir string, err error) {
	dir = vts.GenerateTestDir(testName)
	cfg := TestConfig(dir)
	if modify != nil {
		modify(&cfg)
	}
	vs, err = NewVTSServer(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("unable to create vts server: %v", err)
	}
	return vs, dir, nil
}
