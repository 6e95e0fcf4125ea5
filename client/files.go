package client

// Receipts and keys are saved as the same JSON the server sent, so that a
// saved file can be checked later with nothing but this package. Files are
// replaced atomically, so an interrupted save never leaves a truncated receipt.

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/glowlabs-org/vts/vts"
)

// SaveKey writes a verification key to path as JSON.
func SaveKey(path string, vk VerificationKey) error {
	return saveJSON(path, vk)
}

// LoadKey reads a verification key written by SaveKey.
func LoadKey(path string) (VerificationKey, error) {
	var vk VerificationKey
	if err := loadJSON(path, &vk); err != nil {
		return VerificationKey{}, err
	}
	if vk.PublicKey == "" {
		return VerificationKey{}, fmt.Errorf("%s has no public-key field", path)
	}
	return vk, nil
}

// SaveReceipt writes a signed timestamp to path as JSON.
func SaveReceipt(path string, st SignedTimestamp) error {
	return saveJSON(path, st)
}

// LoadReceipt reads a signed timestamp written by SaveReceipt.
func LoadReceipt(path string) (SignedTimestamp, error) {
	var st SignedTimestamp
	if err := loadJSON(path, &st); err != nil {
		return SignedTimestamp{}, err
	}
	if st.TimeSigned == "" || st.Signature == "" {
		return SignedTimestamp{}, fmt.Errorf("%s is not a signed timestamp", path)
	}
	return st, nil
}

func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal %s: %v", path, err)
	}
	data = append(data, '\n')
	if err := vts.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %v", path, err)
	}
	return nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unable to parse %s: %v", path, err)
	}
	return nil
}
