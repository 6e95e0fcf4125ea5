package vts

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// elliptic65 returns the uncompressed SEC1 encoding of the public key.
func elliptic65(kp KeyPair) []byte {
	return crypto.FromECDSAPub(&kp.staticECDSA.PublicKey)
}
