package cookies

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	errEmptyKey       = errors.New("empty key")
	errEmptyValue     = errors.New("empty value")
	errEmptySigned    = errors.New("empty signed value")
	errTooShort       = errors.New("signed value is too short")
	errInvalidSig     = errors.New("invalid signature")
	errEmptySecretKey = errors.New("empty secret key")
)

// Signer prefixes values with an HMAC-SHA256 of key and value, so a cookie
// value can't be forged or moved to another cookie name.
type Signer struct {
	secretKey []byte
}

func NewSigner(secretKey []byte) (*Signer, error) {
	if len(secretKey) == 0 {
		return nil, errEmptySecretKey
	}
	return &Signer{secretKey: secretKey}, nil
}

func (instance *Signer) Sign(key string, value string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("error signing key value: %w", errEmptyKey)
	}
	if value == "" {
		return "", fmt.Errorf("error signing key value: %w", errEmptyValue)
	}

	var result bytes.Buffer
	result.Write(instance.mac(key, []byte(value)))
	result.WriteString(value)

	return base64.StdEncoding.EncodeToString(result.Bytes()), nil
}

func (instance *Signer) Verify(key string, signedValue string) (string, error) {
	value, err := instance.verify(key, signedValue)
	if err != nil {
		return "", fmt.Errorf("error verifying signed key value: %w", err)
	}
	return value, nil
}

func (instance *Signer) verify(key string, signedValue string) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	if signedValue == "" {
		return "", errEmptySigned
	}

	decoded, err := base64.StdEncoding.DecodeString(signedValue)
	if err != nil {
		return "", err
	}
	if len(decoded) < sha256.Size {
		return "", errTooShort
	}

	signature, value := decoded[:sha256.Size], decoded[sha256.Size:]
	if !hmac.Equal(signature, instance.mac(key, value)) {
		return "", errInvalidSig
	}

	return string(value), nil
}

func (instance *Signer) mac(key string, value []byte) []byte {
	mac := hmac.New(sha256.New, instance.secretKey)
	mac.Write([]byte(key))
	mac.Write(value)
	return mac.Sum(nil)
}
