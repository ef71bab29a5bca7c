package persist

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Iterations and saltSize follow the teacher's encryption package's
// key-derivation defaults.
const (
	pbkdf2Iterations = 100_000
	saltSize         = 16
	keySize          = 32
)

// ErrEncryptionDisabled is returned by Decrypt when called on ciphertext
// shorter than a salt-plus-nonce header, which never happens for data this
// Encryptor wrote itself.
var ErrEncryptionDisabled = errors.New("persist: ciphertext too short")

// Encryptor wraps AES-256-GCM with a PBKDF2-SHA256 password-derived key,
// used to protect interned corpus text at rest. Unlike the teacher's
// KeyManager, there is no rotation here: one Encryptor holds one password
// for the checkpoint's lifetime and derives a fresh key from it per value.
type Encryptor struct {
	password []byte
}

// NewEncryptor derives no key yet; the password is re-salted per value so
// each Encrypt call is independently decryptable without a shared nonce
// store.
func NewEncryptor(password string) *Encryptor {
	return &Encryptor{password: []byte(password)}
}

// Encrypt returns salt || nonce || ciphertext, with the key derived fresh
// from e.password and the random salt.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("persist: generate salt: %w", err)
	}
	key := pbkdf2.Key(e.password, salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("persist: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("persist: new gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("persist: generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, saltSize+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// Decrypt reverses Encrypt, re-deriving the key from the leading salt.
func (e *Encryptor) Decrypt(data []byte) ([]byte, error) {
	if len(data) < saltSize {
		return nil, ErrEncryptionDisabled
	}
	salt, rest := data[:saltSize], data[saltSize:]
	key := pbkdf2.Key(e.password, salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("persist: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("persist: new gcm: %w", err)
	}
	if len(rest) < gcm.NonceSize() {
		return nil, ErrEncryptionDisabled
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("persist: decrypt: %w", err)
	}
	return plaintext, nil
}
