package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const secretBytes = 32

// GenerateSecret returns a fresh pairing secret: 32 random bytes as 64
// lowercase hex characters.
func GenerateSecret() (string, error) {
	bytes := make([]byte, secretBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CanonicalCommandMessage builds the exact string both sides sign:
// "<pairingId>:<commandType>:<nonce>" with the pairing id in decimal.
func CanonicalCommandMessage(pairingID int64, commandType, nonce string) string {
	return fmt.Sprintf("%d:%s:%s", pairingID, commandType, nonce)
}

// HmacSHA256 computes HMAC-SHA256 over the UTF-8 bytes of data keyed
// by the UTF-8 bytes of secret, as 64 lowercase hex characters.
func HmacSHA256(secret, data string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func MaskCode(code string) string {
	if len(code) <= 4 {
		return "****"
	}
	return code[:4] + "****"
}
