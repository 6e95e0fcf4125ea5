package vts

// The KeyStore owns the two key files of the service. The private scalar and
// the public point are written to separate files as raw fixed-length bytes.
// Each file is written to a temp file in the same directory, synced, and
// renamed into place, so a crash can never leave a truncated key file.
//
// If a crash lands between the two renames, only one of the files will exist
// on the next start. That state is reported as ErrStorage rather than being
// repaired, because regenerating would silently orphan every signature that
// was issued under the old key.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

const (
	// DefaultPrivateKeyFile is the file name of the private scalar.
	DefaultPrivateKeyFile = "private_key.bin"

	// DefaultPublicKeyFile is the file name of the public point.
	DefaultPublicKeyFile = "public_key.bin"

	// maxKeyFileSize caps how much is read from a key file before the
	// length check.
	maxKeyFileSize = 4096
)

// KeyStore loads or creates the service key pair at a fixed pair of paths.
type KeyStore struct {
	staticPrivatePath string
	staticPublicPath  string
}

// NewKeyStore returns a KeyStore for the provided file paths.
func NewKeyStore(privatePath, publicPath string) *KeyStore {
	return &KeyStore{
		staticPrivatePath: privatePath,
		staticPublicPath:  publicPath,
	}
}

// NewKeyStoreInDir returns a KeyStore using the default file names inside
// dir.
func NewKeyStoreInDir(dir string) *KeyStore {
	return NewKeyStore(filepath.Join(dir, DefaultPrivateKeyFile), filepath.Join(dir, DefaultPublicKeyFile))
}

// Paths returns the private and public key paths.
func (ks *KeyStore) Paths() (privatePath, publicPath string) {
	return ks.staticPrivatePath, ks.staticPublicPath
}

// LoadOrGenerate returns the persisted key pair, creating and persisting a
// new one if neither key file exists.
func (ks *KeyStore) LoadOrGenerate() (KeyPair, error) {
	kp, _, err := ks.LoadOrGenerateReport()
	return kp, err
}

// LoadOrGenerateReport is LoadOrGenerate, and additionally reports whether a
// new key pair was generated.
func (ks *KeyStore) LoadOrGenerateReport() (kp KeyPair, generated bool, err error) {
	privExists, err := keyFileExists(ks.staticPrivatePath)
	if err != nil {
		return KeyPair{}, false, err
	}
	pubExists, err := keyFileExists(ks.staticPublicPath)
	if err != nil {
		return KeyPair{}, false, err
	}

	switch {
	case privExists && pubExists:
		kp, err := ks.load()
		return kp, false, err
	case privExists:
		return KeyPair{}, false, fmt.Errorf("%w: private key %s exists but public key %s is missing", ErrStorage, ks.staticPrivatePath, ks.staticPublicPath)
	case pubExists:
		return KeyPair{}, false, fmt.Errorf("%w: public key %s exists but private key %s is missing", ErrStorage, ks.staticPublicPath, ks.staticPrivatePath)
	}

	kp, err = GenerateKeyPair()
	if err != nil {
		return KeyPair{}, false, fmt.Errorf("unable to generate key pair: %v", err)
	}
	if err := ks.save(kp); err != nil {
		return KeyPair{}, false, err
	}
	return kp, true, nil
}

// load reads and validates both key files.
func (ks *KeyStore) load() (KeyPair, error) {
	privData, err := readKeyFile(ks.staticPrivatePath)
	if err != nil {
		return KeyPair{}, err
	}
	pubData, err := readKeyFile(ks.staticPublicPath)
	if err != nil {
		return KeyPair{}, err
	}
	kp, err := keyPairFromBytes(privData, pubData)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return kp, nil
}

// save writes the private half first. If the process dies before the public
// half lands, the next start sees a lone private key and refuses to run.
func (ks *KeyStore) save(kp KeyPair) error {
	if err := WriteFileAtomic(ks.staticPrivatePath, kp.privateKey[:], 0600); err != nil {
		return fmt.Errorf("%w: unable to write private key: %v", ErrStorage, err)
	}
	if err := WriteFileAtomic(ks.staticPublicPath, kp.publicKey[:], 0644); err != nil {
		return fmt.Errorf("%w: unable to write public key: %v", ErrStorage, err)
	}
	return nil
}

// keyFileExists reports whether something exists at path.
func keyFileExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: unable to stat %s: %v", ErrStorage, path, err)
	}
	return true, nil
}

// readKeyFile reads a key file, refusing symlinks, non-regular files and
// anything too large to be a key.
func readKeyFile(path string) ([]byte, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to stat %s: %v", ErrStorage, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrStorage, path)
	}
	if info.Size() > maxKeyFileSize {
		return nil, fmt.Errorf("%w: %s is too large (%d bytes)", ErrStorage, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read %s: %v", ErrStorage, path, err)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place once it has been synced. perm is applied as given, without the umask.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create %s: %v", dir, err)
	}
	err := renameio.WriteFile(path, data, perm,
		renameio.WithTempDir(dir),
		renameio.WithStaticPermissions(perm),
	)
	if err != nil {
		return fmt.Errorf("unable to write %s: %v", path, err)
	}

	// Sync the directory so the rename itself is durable. Not every
	// platform supports this, so a failure here is not fatal.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
