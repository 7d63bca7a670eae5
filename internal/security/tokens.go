package security

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")
)

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// RefreshClaims holds JWT claims for the refresh token (includes jti for rotation).
type RefreshClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// TokenProvider issues and validates the RS256-signed access and refresh
// tokens the portal hands to the browser after login or registration.
type TokenProvider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given RSA key.
// issuer and audience are set on claims and checked during validation.
func NewTokenProvider(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess issues a short-lived access JWT for the given session and user.
// Returns the token string, its jti, and expiration time.
func (p *TokenProvider) IssueAccess(sessionID, userID string) (token string, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}
	token, err = p.sign(claims)
	return token, jti, expiresAt, err
}

// IssueRefresh issues a long-lived refresh JWT and returns the token, its jti
// (for rotation binding), and expiration time. Caller should store jti on the session.
func (p *TokenProvider) IssueRefresh(sessionID, userID string) (token, jti string, expiresAt time.Time, err error) {
	jti, err = generateJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}
	token, err = p.sign(claims)
	return token, jti, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

// ValidateRefresh parses and validates the refresh token (signature, exp, iss, aud).
// Returns sessionID, jti, userID, or error.
func (p *TokenProvider) ValidateRefresh(tokenString string) (sessionID, jti, userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, p.keyFunc)
	if err != nil {
		return "", "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return "", "", "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer || !audienceContains(claims.Audience, p.audience) {
		return "", "", "", ErrInvalidToken
	}
	return claims.SessionID, claims.ID, claims.Subject, nil
}

// ValidateAccess parses and validates the access token (signature, exp, iss, aud).
// Returns sessionID, userID, or error.
func (p *TokenProvider) ValidateAccess(tokenString string) (sessionID, userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, p.keyFunc)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer || !audienceContains(claims.Audience, p.audience) {
		return "", "", ErrInvalidToken
	}
	return claims.SessionID, claims.Subject, nil
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, ErrInvalidToken
	}
	return p.publicKey, nil
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
