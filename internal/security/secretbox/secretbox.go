// Package secretbox cifra secretos de proveedores guardados en el store de
// configuración. Formato: base64(nonce)|base64(ciphertext).
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// EnvVar holds the base64 encoded 32 byte master key.
	EnvVar = "SECRETBOX_MASTER_KEY"

	keyLen   = 32
	nonceLen = 24
	sep      = "|"

	// Prefix marks an encrypted value inside settings.
	Prefix = "enc:"
)

var (
	ErrNoKey     = errors.New("secretbox: master key not configured")
	ErrMalformed = errors.New("secretbox: malformed ciphertext")
	ErrTampered  = errors.New("secretbox: authentication failed")
)

type Box struct {
	key [keyLen]byte
}

func New(key []byte) (*Box, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("secretbox: key must be %d bytes, got %d", keyLen, len(key))
	}
	b := &Box{}
	copy(b.key[:], key)
	return b, nil
}

// FromEnv loads the key from SECRETBOX_MASTER_KEY. A missing variable returns
// ErrNoKey so callers can run without encrypted secrets.
func FromEnv() (*Box, error) {
	raw := strings.TrimSpace(os.Getenv(EnvVar))
	if raw == "" {
		return nil, ErrNoKey
	}
	k, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("secretbox: decode %s: %w", EnvVar, err)
	}
	return New(k)
}

func (b *Box) Seal(plain string) (string, error) {
	var nonce [nonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	ct := secretbox.Seal(nil, []byte(plain), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(nonce[:]) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

func (b *Box) Open(sealed string) (string, error) {
	parts := strings.Split(sealed, sep)
	if len(parts) != 2 {
		return "", ErrMalformed
	}
	nb, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nb) != nonceLen {
		return "", ErrMalformed
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformed
	}
	var nonce [nonceLen]byte
	copy(nonce[:], nb)
	plain, ok := secretbox.Open(nil, ct, &nonce, &b.key)
	if !ok {
		return "", ErrTampered
	}
	return string(plain), nil
}

// Reveal returns v unchanged unless it carries Prefix, in which case the
// remainder is opened with b. A nil box cannot reveal prefixed values.
func (b *Box) Reveal(v string) (string, error) {
	if !strings.HasPrefix(v, Prefix) {
		return v, nil
	}
	if b == nil {
		return "", ErrNoKey
	}
	return b.Open(strings.TrimPrefix(v, Prefix))
}
