package vts

import (
	"fmt"
	"os"
)

// WriteSignatureFile saves the raw 64 signature bytes to path.
func WriteSignatureFile(path string, sig Signature) error {
	if err := WriteFileAtomic(path, sig[:], 0644); err != nil {
		return fmt.Errorf("unable to write signature file: %v", err)
	}
	return nil
}

// ReadSignatureFile loads a signature written by WriteSignatureFile.
func ReadSignatureFile(path string) (Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Signature{}, fmt.Errorf("unable to read signature file: %v", err)
	}
	if len(data) != SignatureSize {
		return Signature{}, fmt.Errorf("%w: signature file has length %d, expected %d", ErrMalformedSignature, len(data), SignatureSize)
	}
	var sig Signature
	copy(sig[:], data)
	return sig, nil
}
