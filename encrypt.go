package stowaway

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption errors.
var (
	ErrCiphertextShort = errors.New("ciphertext too short")
	ErrEmptyPassword   = errors.New("empty password")
)

// DefaultAgeWorkFactor is the scrypt log2 work factor used for age sealing.
const DefaultAgeWorkFactor = 18

// Key is a 32-byte symmetric key derived from a password.
type Key [32]byte

// DeriveKey hashes password with SHA-256. The same password always
// yields the same key, with no salt and no stretching.
func DeriveKey(password string) Key {
	return sha256.Sum256([]byte(password))
}

// Encode returns the URL-safe base64 form of k, which is also the
// textual Fernet key format.
func (k Key) Encode() string {
	return base64.URLEncoding.EncodeToString(k[:])
}

// Encryptor handles encryption/decryption operations.
// Ciphertexts are always printable ASCII.
type Encryptor interface {
	// Encrypt encrypts plaintext and returns a text token.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts a text token and returns plaintext.
	// Any failure wraps ErrDecryptionFailed.
	Decrypt(token []byte) ([]byte, error)
}

// NewEncryptor builds the encryptor for algo keyed by password.
// ageWorkFactor only applies to CipherAge; zero selects DefaultAgeWorkFactor.
func NewEncryptor(algo CipherAlgo, password string, ageWorkFactor int) (Encryptor, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	switch algo {
	case CipherFernet, "":
		return Fernet(DeriveKey(password)), nil
	case CipherAESGCM:
		return AES(DeriveKey(password))
	case CipherXChaCha20:
		return XChaCha20(DeriveKey(password))
	case CipherAge:
		return Age(password, ageWorkFactor)
	default:
		return nil, newConfigError("cipher", string(algo))
	}
}

// fernetEncryptor produces Fernet tokens.
type fernetEncryptor struct {
	key *fernet.Key
}

// Fernet returns an encryptor producing Fernet tokens under key.
// Tokens never expire.
func Fernet(key Key) Encryptor {
	k := fernet.Key(key)
	return &fernetEncryptor{key: &k}
}

func (e *fernetEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	return fernet.EncryptAndSign(plaintext, e.key)
}

func (e *fernetEncryptor) Decrypt(token []byte) ([]byte, error) {
	msg := fernet.VerifyAndDecrypt(bytes.TrimSpace(token), 0, []*fernet.Key{e.key})
	if msg == nil {
		return nil, fmt.Errorf("%w: invalid token", ErrDecryptionFailed)
	}
	return msg, nil
}

// aeadEncryptor implements nonce-prefixed AEAD sealing.
type aeadEncryptor struct {
	aead cipher.AEAD
}

// AES returns an AES-256-GCM encryptor.
func AES(key Key) (Encryptor, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return armor(&aeadEncryptor{aead: gcm}), nil
}

// XChaCha20 returns an XChaCha20-Poly1305 encryptor.
func XChaCha20(key Key) (Encryptor, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, err
	}
	return armor(&aeadEncryptor{aead: aead}), nil
}

func (e *aeadEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *aeadEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrCiphertextShort)
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}

// ageEncryptor implements age scrypt passphrase encryption.
type ageEncryptor struct {
	recipient *age.ScryptRecipient
	identity  *age.ScryptIdentity
}

// Age returns an age passphrase encryptor. workFactor is the scrypt log2 cost.
func Age(password string, workFactor int) (Encryptor, error) {
	if workFactor <= 0 {
		workFactor = DefaultAgeWorkFactor
	}

	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(workFactor)

	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(max(workFactor, DefaultAgeWorkFactor))

	return armor(&ageEncryptor{recipient: recipient, identity: identity}), nil
}

func (e *ageEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, e.recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing age encryption: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing age ciphertext: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age ciphertext: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ageEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(ciphertext), e.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// armoredEncryptor wraps a binary encryptor with unpadded URL-safe base64.
type armoredEncryptor struct {
	inner Encryptor
}

func armor(inner Encryptor) Encryptor {
	return &armoredEncryptor{inner: inner}
}

func (e *armoredEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	raw, err := e.inner.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.RawURLEncoding.EncodedLen(len(raw)))
	base64.RawURLEncoding.Encode(out, raw)
	return out, nil
}

func (e *armoredEncryptor) Decrypt(token []byte) ([]byte, error) {
	token = bytes.TrimSpace(token)
	raw := make([]byte, base64.RawURLEncoding.DecodedLen(len(token)))
	n, err := base64.RawURLEncoding.Decode(raw, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	return e.inner.Decrypt(raw[:n])
}
