package vts

// testing.go contains exported functions that are intended to be used during
// testing but not in other ways.

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GenerateSecureRandomInt returns a secure random integer between min and max
// (inclusive). It panics if the system random source fails.
func GenerateSecureRandomInt(min, max int) int {
	var n uint32
	err := binary.Read(rand.Reader, binary.LittleEndian, &n)
	if err != nil {
		panic("secure random number generation is not working")
	}
	return int(n)%(max-min+1) + min
}

// GenerateTestDir creates a fresh directory under the OS temp folder for a
// test. The name includes the test name, the unix time and a 6 digit random
// number so that repeated runs never collide.
func GenerateTestDir(testName string) string {
	// Subtests contain slashes, which would otherwise nest directories.
	name := strings.ReplaceAll(testName, "/", "_")
	dirName := fmt.Sprintf("%s-%d-%d", name, time.Now().Unix(), GenerateSecureRandomInt(100000, 999999))
	fullPath := filepath.Join(os.TempDir(), dirName)
	err := os.MkdirAll(fullPath, 0755)
	if err != nil {
		panic(err)
	}
	return fullPath
}

// MustKeyPair builds a key pair from a hex private key, panicking on bad
// input. Tests use it to pin a known key pair.
func MustKeyPair(privHex string) KeyPair {
	data, err := hex.DecodeString(privHex)
	if err != nil || len(data) != PrivateKeySize {
		panic(fmt.Sprintf("bad private key hex: %q", privHex))
	}
	var priv PrivateKey
	copy(priv[:], data)
	kp, err := KeyPairFromPrivateKey(priv)
	if err != nil {
		panic(err)
	}
	return kp
}
