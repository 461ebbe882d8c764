package voice

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// MaxSpeechChars is the longest text the live synthesis endpoint accepts,
// the speech provider's own input limit.
const MaxSpeechChars = 4096

// ClampSpeech trims text and cuts it to MaxSpeechChars runes.
func ClampSpeech(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= MaxSpeechChars {
		return text
	}
	return string([]rune(text)[:MaxSpeechChars])
}

var ErrBadLink = errors.New("voice: invalid or expired synthesis link")

const linkIssuer = "novo-contact/tts"

// LinkSigner mints short-lived tokens binding a synthesis URL to its text,
// so only links the server handed to the provider can trigger synthesis.
type LinkSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewLinkSigner(secret string, ttl time.Duration) (*LinkSigner, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("link signer: secret required")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &LinkSigner{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func textDigest(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}

// Sign returns the token for text.
func (s *LinkSigner) Sign(text string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    linkIssuer,
		Subject:   textDigest(text),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify checks token was issued by Sign for exactly text and has not
// expired.
func (s *LinkSigner) Verify(text, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrBadLink
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(linkIssuer),
		jwt.WithSubject(textDigest(text)),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return errors.Join(ErrBadLink, err)
	}
	return nil
}
