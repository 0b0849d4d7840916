package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
	"gopkg.in/yaml.v3"
)

const (
	fileVersion     = 1
	saltLength      = 16
	kdfIterations   = 100000
	derivedKeyBytes = 32
)

// File is a Store backed by a YAML document whose values are sealed
// individually with a passphrase-derived AES-GCM key. Session identifiers
// are private key material, so the file is written 0600 and never holds
// them in the clear.
type File struct {
	mu         sync.Mutex
	path       string
	passphrase string
	doc        fileDocument
}

type fileDocument struct {
	Version   int               `yaml:"version"`
	Timestamp time.Time         `yaml:"timestamp"`
	Values    map[string]string `yaml:"values"`
}

// NewFile opens or creates the keystore at path. An unreadable or
// undecodable existing file is an error rather than a silent reset; the
// stored values are not recoverable without the file.
func NewFile(path, passphrase string) (*File, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("keystore path is required")
	}
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("keystore passphrase is required")
	}

	store := &File{
		path:       path,
		passphrase: passphrase,
		doc: fileDocument{
			Version: fileVersion,
			Values:  make(map[string]string),
		},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	if err := yaml.Unmarshal(raw, &store.doc); err != nil {
		return nil, fmt.Errorf("failed to parse keystore %s: %w", path, err)
	}
	if store.doc.Values == nil {
		store.doc.Values = make(map[string]string)
	}

	return store, nil
}

func (f *File) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sealed, ok := f.doc.Values[key]
	if !ok {
		return "", nil
	}
	return f.open(sealed)
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sealed, err := f.seal(value)
	if err != nil {
		return err
	}

	f.doc.Values[key] = sealed
	return f.save()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.doc.Values[key]; !ok {
		return nil
	}
	delete(f.doc.Values, key)
	return f.save()
}

func (f *File) save() error {
	f.doc.Timestamp = time.Now().UTC()

	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(&f.doc); err != nil {
		return fmt.Errorf("failed to encode keystore: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode keystore: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create keystore directory: %w", err)
	}
	if err := os.WriteFile(f.path, buffer.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}
	return nil
}

// seal encrypts a value as base64(salt || nonce || ciphertext) with a key
// derived from the passphrase and a fresh salt.
func (f *File) seal(value string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := f.cipherForSalt(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := append(salt, nonce...)
	sealed = gcm.Seal(sealed, nonce, []byte(value), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (f *File) open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored value: %w", err)
	}
	if len(raw) < saltLength {
		return "", fmt.Errorf("stored value is truncated")
	}

	gcm, err := f.cipherForSalt(raw[:saltLength])
	if err != nil {
		return "", err
	}

	body := raw[saltLength:]
	if len(body) < gcm.NonceSize() {
		return "", fmt.Errorf("stored value is truncated")
	}

	value, err := gcm.Open(nil, body[:gcm.NonceSize()], body[gcm.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt stored value: %w", err)
	}
	return string(value), nil
}

func (f *File) cipherForSalt(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(f.passphrase), salt, kdfIterations, derivedKeyBytes, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	return gcm, nil
}
