package rpcclient

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58"
)

const ed25519Prefix = "ed25519:"

// keyTypeED25519 is the borsh tag of ed25519 keys and signatures.
const keyTypeED25519 uint8 = 0

// ErrUnsupportedKeyType is returned for keys that are not ed25519.
var ErrUnsupportedKeyType = errors.New("unsupported key type")

// PublicKey is an ed25519 public key.
type PublicKey [ed25519.PublicKeySize]byte

// String returns the key as "ed25519:<base58>".
func (k PublicKey) String() string {
	return ed25519Prefix + base58.Encode(k[:])
}

// ParsePublicKey parses an "ed25519:<base58>" public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var k PublicKey
	b, err := decodeKey(s)
	if err != nil {
		return k, err
	}
	if len(b) != len(k) {
		return k, fmt.Errorf("invalid public key length %d", len(b))
	}
	copy(k[:], b)

	return k, nil
}

// KeyPair is an ed25519 key pair able to sign transactions.
type KeyPair struct {
	private ed25519.PrivateKey
}

// NewKeyPair wraps an ed25519 private key.
func NewKeyPair(key ed25519.PrivateKey) KeyPair {
	return KeyPair{private: key}
}

// ParseKeyPair parses an "ed25519:<base58>" private key, either the 64 byte expanded key
// written by near-cli or a 32 byte seed.
func ParseKeyPair(s string) (KeyPair, error) {
	b, err := decodeKey(s)
	if err != nil {
		return KeyPair{}, err
	}

	switch len(b) {
	case ed25519.PrivateKeySize:
		return KeyPair{private: ed25519.PrivateKey(b)}, nil
	case ed25519.SeedSize:
		return KeyPair{private: ed25519.NewKeyFromSeed(b)}, nil
	default:
		return KeyPair{}, fmt.Errorf("invalid private key length %d", len(b))
	}
}

// PublicKey returns the public half of the pair.
func (k KeyPair) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], k.private.Public().(ed25519.PublicKey))

	return pk
}

// Sign signs msg.
func (k KeyPair) Sign(msg []byte) [ed25519.SignatureSize]byte {
	var sig [ed25519.SignatureSize]byte
	copy(sig[:], ed25519.Sign(k.private, msg))

	return sig
}

func decodeKey(s string) ([]byte, error) {
	raw, ok := strings.CutPrefix(s, ed25519Prefix)
	if !ok {
		if i := strings.IndexByte(s, ':'); i >= 0 {
			return nil, fmt.Errorf("%w %q", ErrUnsupportedKeyType, s[:i])
		}
		// near-cli accepts unprefixed keys as ed25519
		raw = s
	}

	b, err := base58.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 key: %w", err)
	}

	return b, nil
}

// Credentials is a near-cli credentials file.
type Credentials struct {
	AccountID  string `json:"account_id"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	// SecretKey is the field name used by older near-cli versions.
	SecretKey string `json:"secret_key,omitempty"`
}

// KeyPair parses the private key of the credentials and checks it matches the public key.
func (c Credentials) KeyPair() (KeyPair, error) {
	priv := c.PrivateKey
	if priv == "" {
		priv = c.SecretKey
	}
	if priv == "" {
		return KeyPair{}, fmt.Errorf("credentials of %s have no private key", c.AccountID)
	}

	kp, err := ParseKeyPair(priv)
	if err != nil {
		return KeyPair{}, fmt.Errorf("credentials of %s: %w", c.AccountID, err)
	}

	if c.PublicKey != "" {
		pk, err := ParsePublicKey(c.PublicKey)
		if err != nil {
			return KeyPair{}, fmt.Errorf("credentials of %s: %w", c.AccountID, err)
		}
		if pk != kp.PublicKey() {
			return KeyPair{}, fmt.Errorf("credentials of %s: public key %s does not match private key", c.AccountID, c.PublicKey)
		}
	}

	return kp, nil
}

// Keystore reads near-cli credentials laid out as <dir>/<network>/<account>.json.
type Keystore struct {
	Dir       string
	NetworkID string
}

// DefaultCredentialsDir returns ~/.near-credentials.
func DefaultCredentialsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".near-credentials"), nil
}

// Path returns the credentials file path of account.
func (s Keystore) Path(account string) string {
	return filepath.Join(s.Dir, s.NetworkID, account+".json")
}

// Load reads the credentials of account.
func (s Keystore) Load(account string) (Credentials, error) {
	path := s.Path(account)
	b, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials of %s: %w", account, err)
	}

	var creds Credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	if creds.AccountID == "" {
		creds.AccountID = account
	}

	return creds, nil
}

// KeyPair loads and parses the key pair of account.
func (s Keystore) KeyPair(account string) (KeyPair, error) {
	creds, err := s.Load(account)
	if err != nil {
		return KeyPair{}, err
	}

	return creds.KeyPair()
}
