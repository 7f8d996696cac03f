// Package authtoken implements the signed bearer tokens issued by
// /auth/login.
//
// A token is the base64url (unpadded) encoding of a CBOR payload followed
// by a 64-byte Ed25519 signature over the payload bytes:
//
//	base64url([CBOR payload bytes] [64-byte Ed25519 signature])
//
// The signing key is derived from the configured secret with HKDF-SHA256,
// so every replica sharing the secret accepts the same tokens.
package authtoken

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"
)

const signatureSize = ed25519.SignatureSize

var hkdfInfoSigningKey = []byte("planning-cloud-api.token.signing.v1")

// Token is the CBOR-encoded payload of a bearer token.
type Token struct {
	// ID is a unique token identifier, used for revocation.
	ID string `cbor:"1,keyasint"`

	Username string `cbor:"2,keyasint"`
	Role     string `cbor:"3,keyasint"`
	System   string `cbor:"4,keyasint"`

	// IssuedAt and ExpiresAt are Unix timestamps in seconds.
	IssuedAt  int64 `cbor:"5,keyasint"`
	ExpiresAt int64 `cbor:"6,keyasint"`
}

// Errors returned by Verify and VerifyAt.
var (
	ErrMalformed        = errors.New("authtoken: malformed token")
	ErrTokenTooShort    = errors.New("authtoken: token too short for signature")
	ErrInvalidSignature = errors.New("authtoken: invalid Ed25519 signature")
	ErrTokenExpired     = errors.New("authtoken: token has expired")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Deterministic encoding: the same payload always signs the same bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("authtoken: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("authtoken: CBOR decoder initialization failed: " + err.Error())
	}
}

// DeriveKey derives the Ed25519 signing key from a shared secret.
func DeriveKey(secret string) (ed25519.PrivateKey, error) {
	if secret == "" {
		return nil, errors.New("authtoken: empty secret")
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, hkdfInfoSigningKey)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("authtoken: HKDF key derivation failed: %w", err)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Mint signs a token and returns its string form.
func Mint(privateKey ed25519.PrivateKey, token *Token) (string, error) {
	payload, err := encMode.Marshal(token)
	if err != nil {
		return "", fmt.Errorf("authtoken: encoding token payload: %w", err)
	}

	signature := ed25519.Sign(privateKey, payload)

	raw := make([]byte, len(payload)+signatureSize)
	copy(raw, payload)
	copy(raw[len(payload):], signature)

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Verify checks the signature and expiry of a token at the current time.
func Verify(publicKey ed25519.PublicKey, token string) (*Token, error) {
	return VerifyAt(publicKey, token, time.Now())
}

// VerifyAt is like Verify but accepts an explicit time for expiry checks.
func VerifyAt(publicKey ed25519.PublicKey, token string, now time.Time) (*Token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformed
	}
	if len(raw) <= signatureSize {
		return nil, ErrTokenTooShort
	}

	splitPoint := len(raw) - signatureSize
	payload := raw[:splitPoint]
	signature := raw[splitPoint:]

	if !ed25519.Verify(publicKey, payload, signature) {
		return nil, ErrInvalidSignature
	}

	var decoded Token
	if err := decMode.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if now.Unix() >= decoded.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &decoded, nil
}
