package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserKind discriminates the two login tables.
type UserKind string

const (
	KindPatient UserKind = "Patient"
	KindDoctor  UserKind = "Doctor"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
	UserType UserKind `json:"user_type"`
	FullName string   `json:"full_name,omitempty"`
}

// Principal is the identity carried by a verified token.
type Principal struct {
	UserID   int64
	UserType UserKind
	FullName string
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(key []byte, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, issuer: issuer, ttl: ttl, now: time.Now}
}

// subject encodes kind and id so patient 7 and doctor 7 never collide.
func subject(kind UserKind, id int64) string {
	return strings.ToLower(string(kind)) + ":" + strconv.FormatInt(id, 10)
}

func parseSubject(sub string) (UserKind, int64, error) {
	prefix, rawID, ok := strings.Cut(sub, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed subject %q", sub)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed subject id %q: %w", rawID, err)
	}
	switch prefix {
	case "patient":
		return KindPatient, id, nil
	case "doctor":
		return KindDoctor, id, nil
	}
	return "", 0, fmt.Errorf("unknown subject kind %q", prefix)
}

// Issue returns a signed token for the given user.
func (t *TokenIssuer) Issue(p Principal) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject(p.UserType, p.UserID),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UserType: p.UserType,
		FullName: p.FullName,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns the principal it names.
func (t *TokenIssuer) Verify(tokenStr string) (*Principal, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	kind, id, err := parseSubject(claims.Subject)
	if err != nil || kind != claims.UserType {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: id, UserType: kind, FullName: claims.FullName}, nil
}
