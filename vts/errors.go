package vts

import (
	"errors"
)

var (
	// ErrStorage is returned when persisted key material is missing but
	// expected, or present but malformed. It is fatal to start-up and must
	// never be answered by silently generating a replacement key.
	ErrStorage = errors.New("key storage error")

	// ErrSigning is returned when the in-memory key cannot produce a
	// signature. Given a KeyPair that came out of the KeyStore this should
	// be unreachable.
	ErrSigning = errors.New("signing error")

	// ErrMalformedPublicKey indicates that public key bytes could not be
	// parsed as a secp256k1 point.
	ErrMalformedPublicKey = errors.New("malformed public key")

	// ErrMalformedSignature indicates that signature bytes do not have the
	// r || s shape.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrInvalidSignature indicates a well-formed signature that does not
	// validate against the payload and public key.
	ErrInvalidSignature = errors.New("signature verification failed")
)
