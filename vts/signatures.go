package vts

// This file contains the signing and verification halves of the protocol.
// The signed payload is message || timestamp with no separator, and both
// halves build it through SigningBytes so that the encoding can never drift.

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// SigningBytes generates the byte slice that gets signed for a message and
// its canonical timestamp.
func SigningBytes(message []byte, timestamp string) []byte {
	data := make([]byte, len(message)+len(timestamp))
	copy(data, message)
	copy(data[len(message):], timestamp)
	return data
}

// Sign produces an ECDSA signature over the SHA-256 digest of data. The
// recovery byte produced by go-ethereum is dropped, leaving r || s.
func Sign(data []byte, kp KeyPair) (Signature, error) {
	if !kp.Valid() {
		return Signature{}, fmt.Errorf("%w: key pair is not initialized", ErrSigning)
	}
	hash := sha256.Sum256(data)
	sig, err := crypto.Sign(hash[:], kp.staticECDSA)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	var signature Signature
	copy(signature[:], sig[:SignatureSize])
	return signature, nil
}

// Verify checks a signature over data against a public key.
func Verify(publicKey PublicKey, data []byte, signature Signature) bool {
	return verifyDigest(publicKey[:], data, signature[:])
}

// SignTimestamped reads the clock exactly once, signs message || timestamp
// and returns that same timestamp string next to the signature.
func SignTimestamped(message []byte, clock TimestampSource, kp KeyPair) (string, Signature, error) {
	timestamp := clock.Now()
	sig, err := Sign(SigningBytes(message, timestamp), kp)
	if err != nil {
		return "", Signature{}, err
	}
	return timestamp, sig, nil
}

// CheckTimestamp verifies a timestamped signature using nothing but the
// public key. The error distinguishes malformed input from a signature that
// simply does not validate.
func CheckTimestamp(message []byte, timestamp string, signature, publicKey []byte) error {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return err
	}
	if len(signature) != SignatureSize {
		return fmt.Errorf("%w: length %d, expected %d", ErrMalformedSignature, len(signature), SignatureSize)
	}
	if !verifyDigest(pub, SigningBytes(message, timestamp), signature) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyTimestamp reports whether signature is a valid signature over
// message || timestamp for publicKey. Malformed keys and signatures are
// reported as false, same as a signature that does not validate.
func VerifyTimestamp(message []byte, timestamp string, signature, publicKey []byte) bool {
	return CheckTimestamp(message, timestamp, signature, publicKey) == nil
}

// parsePublicKey accepts compressed or uncompressed SEC1 bytes and returns the
// compressed form.
func parsePublicKey(publicKey []byte) ([]byte, error) {
	switch len(publicKey) {
	case PublicKeySize:
		pub, err := crypto.DecompressPubkey(publicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
		}
		return crypto.CompressPubkey(pub), nil
	case UncompressedPublicKeySize:
		pub, err := crypto.UnmarshalPubkey(publicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
		}
		return crypto.CompressPubkey(pub), nil
	default:
		return nil, fmt.Errorf("%w: length %d", ErrMalformedPublicKey, len(publicKey))
	}
}

// verifyDigest hashes data and runs the curve check. VerifySignature rejects
// high-S signatures and out of range scalars on its own.
func verifyDigest(publicKey, data, signature []byte) bool {
	if len(signature) != SignatureSize {
		return false
	}
	hash := sha256.Sum256(data)
	return crypto.VerifySignature(publicKey, hash[:], signature)
}
