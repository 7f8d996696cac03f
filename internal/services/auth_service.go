package services

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/projectplanning/planning-cloud-api/internal/authtoken"
	"github.com/projectplanning/planning-cloud-api/internal/config"
	"github.com/projectplanning/planning-cloud-api/internal/constants"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredentialsRequired = apierrors.Validation("username and password are required")
	ErrInvalidCredentials  = apierrors.Unauthorized("invalid username or password")
	ErrTokenRequired       = apierrors.Validation("token is required")
	ErrInvalidToken        = apierrors.Unauthorized("invalid or expired token")
)

// Principal is the authenticated caller carried by a valid token
type Principal struct {
	TokenID   string    `json:"-"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	System    string    `json:"system"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type account struct {
	passwordHash []byte
	role         string
}

// AuthService issues and verifies bearer tokens for a static account list.
type AuthService struct {
	accounts   map[string]account
	signingKey ed25519.PrivateKey
	verifyKey  ed25519.PublicKey
	ttl        time.Duration
	blacklist  *authtoken.Blacklist
	now        func() time.Time
}

// NewAuthService creates a new AuthService. Plaintext passwords in creds are
// hashed with bcrypt.
func NewAuthService(creds []config.Credential, secret string, ttl time.Duration) (*AuthService, error) {
	signingKey, err := authtoken.DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = constants.DefaultTokenTTL
	}

	accounts := make(map[string]account, len(creds))
	for _, cred := range creds {
		hash := []byte(cred.PasswordHash)
		if len(hash) == 0 {
			hash, err = bcrypt.GenerateFromPassword([]byte(cred.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password for %s: %w", cred.Username, err)
			}
		}
		accounts[cred.Username] = account{passwordHash: hash, role: cred.Role}
	}

	return &AuthService{
		accounts:   accounts,
		signingKey: signingKey,
		verifyKey:  signingKey.Public().(ed25519.PublicKey),
		ttl:        ttl,
		blacklist:  authtoken.NewBlacklist(),
		now:        time.Now,
	}, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
	System   string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	Principal Principal
	ExpiresIn int64
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}

	acct, ok := s.accounts[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	system := strings.TrimSpace(input.System)
	if system == "" {
		system = constants.DefaultSystem
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl)
	token := &authtoken.Token{
		ID:        uuid.NewString(),
		Username:  username,
		Role:      acct.role,
		System:    system,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	signed, err := authtoken.Mint(s.signingKey, token)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	return &LoginResult{
		Token:     signed,
		Principal: principalFromToken(token),
		ExpiresIn: int64(s.ttl / time.Second),
	}, nil
}

// Validate verifies a token and returns its principal.
func (s *AuthService) Validate(token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenRequired
	}

	decoded, err := authtoken.VerifyAt(s.verifyKey, token, s.now())
	if err != nil {
		return nil, ErrInvalidToken
	}
	if s.blacklist.IsRevoked(decoded.ID) {
		return nil, ErrInvalidToken
	}

	principal := principalFromToken(decoded)
	return &principal, nil
}

// Logout revokes a token until it expires.
func (s *AuthService) Logout(token string) error {
	principal, err := s.Validate(token)
	if err != nil {
		if errors.Is(err, ErrTokenRequired) {
			return err
		}
		return ErrInvalidToken
	}

	s.blacklist.Revoke(principal.TokenID, principal.ExpiresAt)
	s.blacklist.Cleanup(s.now())
	return nil
}

func principalFromToken(token *authtoken.Token) Principal {
	return Principal{
		TokenID:   token.ID,
		Username:  token.Username,
		Role:      token.Role,
		System:    token.System,
		ExpiresAt: time.Unix(token.ExpiresAt, 0),
	}
}
