package keys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	KeyVersionSeparator = "."
	KeyLength           = 32 // 256 bits
)

// SigningKey represents a versioned token signing key
type SigningKey struct {
	Environment string    `json:"environment"`
	Version     string    `json:"version"`
	Key         []byte    `json:"key"`
	CreatedAt   time.Time `json:"created_at"`
}

// KeyManager holds the current signing key and, during a rotation, the
// previous one
type KeyManager struct {
	currentKey  *SigningKey
	previousKey *SigningKey
	environment string
}

// NewKeyManager parses the current and optional previous key strings. Both
// must belong to env.
func NewKeyManager(env, current, previous string) (*KeyManager, error) {
	if env == "" {
		env = "dev"
	}

	mgr := &KeyManager{environment: env}

	if current == "" {
		return nil, fmt.Errorf("current signing key not configured")
	}

	currentKey, err := ParseKeyString(current)
	if err != nil {
		return nil, fmt.Errorf("invalid current key format: %w", err)
	}
	if currentKey.Environment != env {
		return nil, fmt.Errorf("key environment mismatch: expected %s, got %s", env, currentKey.Environment)
	}
	mgr.currentKey = currentKey

	if previous != "" {
		previousKey, err := ParseKeyString(previous)
		if err != nil {
			return nil, fmt.Errorf("invalid previous key format: %w", err)
		}
		if previousKey.Environment != env {
			return nil, fmt.Errorf("previous key environment mismatch: expected %s, got %s", env, previousKey.Environment)
		}
		if previousKey.Version == currentKey.Version {
			return nil, fmt.Errorf("previous key reuses current version %s", currentKey.Version)
		}
		mgr.previousKey = previousKey
	}

	return mgr, nil
}

// GenerateKey creates a new random signing key
func GenerateKey(env, version string) (*SigningKey, error) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	return &SigningKey{
		Environment: env,
		Version:     version,
		Key:         key,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// String formats the key for environment variable storage
func (k *SigningKey) String() string {
	keyData := base64.StdEncoding.EncodeToString(k.Key)
	return k.Environment + KeyVersionSeparator + k.Version + KeyVersionSeparator + keyData
}

// ParseKeyString parses "<env>.<version>.<base64 key>"
func ParseKeyString(keyStr string) (*SigningKey, error) {
	parts := strings.Split(keyStr, KeyVersionSeparator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid key format")
	}

	keyData, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}

	if len(keyData) != KeyLength {
		return nil, fmt.Errorf("invalid key length: expected %d bytes, got %d", KeyLength, len(keyData))
	}

	return &SigningKey{
		Environment: parts[0],
		Version:     parts[1],
		Key:         keyData,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// GetCurrentKey returns the key new tokens are signed with
func (m *KeyManager) GetCurrentKey() *SigningKey {
	return m.currentKey
}

// GetPreviousKey returns the previous key if available
func (m *KeyManager) GetPreviousKey() *SigningKey {
	return m.previousKey
}

// Lookup returns the key with the given version, current or previous.
func (m *KeyManager) Lookup(version string) (*SigningKey, bool) {
	if m.currentKey != nil && m.currentKey.Version == version {
		return m.currentKey, true
	}
	if m.previousKey != nil && m.previousKey.Version == version {
		return m.previousKey, true
	}
	return nil, false
}

// GetEnvironment returns the current environment
func (m *KeyManager) GetEnvironment() string {
	return m.environment
}
