package remote

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields the current bearer token. An empty token with a nil error
// means the viewer is signed out.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed token, mostly useful in tests.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// FileTokenSource reads the token file on every call so that a sign-in or
// sign-out done by another process is picked up without a restart.
type FileTokenSource struct {
	Path string
	Now  func() time.Time
}

func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{Path: path, Now: time.Now}
}

func (s *FileTokenSource) Token() (string, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	tok := strings.TrimSpace(string(b))
	if tok == "" || expired(tok, s.now()) {
		return "", nil
	}
	return tok, nil
}

func (s *FileTokenSource) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// expired reports whether tok is a JWT whose exp claim lies in the past.
// Tokens that are not JWTs are never considered expired here; the book service
// has the final word on them.
func expired(tok string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
