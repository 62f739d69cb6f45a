package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const keyFileName = "key.bin"

// GetKeyPath returns the path to the encryption key file
func GetKeyPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to the user's home directory
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	securityDir := filepath.Join(configDir, "MotoZonePos")
	if err := os.MkdirAll(securityDir, 0755); err != nil {
		return "", fmt.Errorf("could not create security directory: %w", err)
	}

	return filepath.Join(securityDir, keyFileName), nil
}

// GenerateKeyIfNotExists generates a new encryption key if it doesn't exist
// Returns the key (existing or newly generated)
func GenerateKeyIfNotExists() ([]byte, error) {
	keyPath, err := GetKeyPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(keyPath); err == nil {
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("could not read key file: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("invalid key size: expected 32 bytes, got %d", len(key))
		}
		return key, nil
	}

	// Key doesn't exist, generate new one (AES-256)
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("could not generate random key: %w", err)
	}

	// Save key with restrictive permissions (only readable by owner)
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("could not write key file: %w", err)
	}

	return key, nil
}

// Encrypt encrypts plaintext using AES-GCM with the application key
func Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	key, err := GenerateKeyIfNotExists()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("could not create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("could not create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	// Encode to base64 for JSON storage
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts ciphertext using AES-GCM with the application key
func Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	key, err := GenerateKeyIfNotExists()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("could not decode ciphertext: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("could not create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("could not create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, cipherData := data[:nonceSize], data[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, cipherData, nil)
	if err != nil {
		return "", fmt.Errorf("could not decrypt: %w", err)
	}

	return string(plaintext), nil
}
