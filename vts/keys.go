package vts

// This file contains the key types used by the timestamping service. All keys
// live on the secp256k1 curve. The private half is a 32 byte big-endian
// scalar, the public half is the 33 byte compressed SEC1 encoding of the
// point.

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// PrivateKeySize is the length of a raw private scalar.
	PrivateKeySize = 32

	// PublicKeySize is the length of a compressed SEC1 public point.
	PublicKeySize = 33

	// UncompressedPublicKeySize is the length of an uncompressed SEC1
	// public point. Verifiers accept this form as well.
	UncompressedPublicKeySize = 65

	// SignatureSize is the length of an r || s signature.
	SignatureSize = 64
)

// PublicKey represents a 33-byte compressed secp256k1 public key.
type PublicKey [PublicKeySize]byte

// PrivateKey represents a 32-byte secp256k1 private scalar.
type PrivateKey [PrivateKeySize]byte

// Signature represents a 64-byte r || s signature.
type Signature [SignatureSize]byte

// String returns the hex encoding of the public key.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// KeyPair holds a private scalar together with the public point derived from
// it. A KeyPair is never mutated after construction, so a single value can be
// shared by any number of concurrent signers without locking.
type KeyPair struct {
	publicKey  PublicKey
	privateKey PrivateKey

	// The parsed form of the private key, built once so that signing does
	// not need to re-validate the scalar on every call.
	staticECDSA *ecdsa.PrivateKey
}

// GenerateKeyPair creates a brand new key pair from the operating system's
// secure random source. Every call draws fresh randomness.
func GenerateKeyPair() (KeyPair, error) {
	privateKeyECDSA, err := crypto.GenerateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("unable to generate private key: %v", err)
	}
	return keyPairFromECDSA(privateKeyECDSA), nil
}

// KeyPairFromPrivateKey rebuilds the key pair that belongs to the provided
// private scalar. The scalar must be non-zero and less than the curve order.
func KeyPairFromPrivateKey(priv PrivateKey) (KeyPair, error) {
	privateKeyECDSA, err := crypto.ToECDSA(priv[:])
	if err != nil {
		return KeyPair{}, fmt.Errorf("invalid private key: %v", err)
	}
	return keyPairFromECDSA(privateKeyECDSA), nil
}

// keyPairFromBytes parses raw persisted key material. The public half must be
// exactly the point derived from the private half, otherwise the two halves
// belong to different pairs and the material is rejected.
func keyPairFromBytes(privData, pubData []byte) (KeyPair, error) {
	if len(privData) != PrivateKeySize {
		return KeyPair{}, fmt.Errorf("private key has length %d, expected %d", len(privData), PrivateKeySize)
	}
	if len(pubData) != PublicKeySize {
		return KeyPair{}, fmt.Errorf("public key has length %d, expected %d", len(pubData), PublicKeySize)
	}
	if _, err := crypto.DecompressPubkey(pubData); err != nil {
		return KeyPair{}, fmt.Errorf("public key is not a valid curve point: %v", err)
	}
	var priv PrivateKey
	copy(priv[:], privData)
	kp, err := KeyPairFromPrivateKey(priv)
	if err != nil {
		return KeyPair{}, err
	}
	if !bytes.Equal(kp.publicKey[:], pubData) {
		return KeyPair{}, fmt.Errorf("public key does not match private key")
	}
	return kp, nil
}

func keyPairFromECDSA(privateKeyECDSA *ecdsa.PrivateKey) KeyPair {
	var kp KeyPair
	copy(kp.privateKey[:], crypto.FromECDSA(privateKeyECDSA))
	copy(kp.publicKey[:], crypto.CompressPubkey(&privateKeyECDSA.PublicKey))
	kp.staticECDSA = privateKeyECDSA
	return kp
}

// PublicKey returns the public half of the key pair.
func (kp KeyPair) PublicKey() PublicKey {
	return kp.publicKey
}

// Valid reports whether the key pair was built by one of the constructors in
// this package. The zero value is not valid.
func (kp KeyPair) Valid() bool {
	return kp.staticECDSA != nil
}
