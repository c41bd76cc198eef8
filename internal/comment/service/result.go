package service

import (
	"errors"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/remote"
)

var (
	ErrEmptyContent     = errors.New("empty content")
	ErrInvalidReaction  = errors.New("invalid reaction")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrNotConfirmed     = errors.New("not confirmed")
	ErrStale            = errors.New("superseded by a newer operation")
)

// Kind classifies the outcome of a discussion operation.
type Kind uint8

const (
	KindOK Kind = iota
	// KindSkipped means nothing was attempted, e.g. an anonymous viewer
	// pressing a reaction button.
	KindSkipped
	KindValidation
	KindForbidden
	KindNotFound
	KindUnconfirmed
	KindAuth
	KindTransport
	KindStale
)

var kindNames = [...]string{
	KindOK:          "ok",
	KindSkipped:     "skipped",
	KindValidation:  "validation",
	KindForbidden:   "forbidden",
	KindNotFound:    "not_found",
	KindUnconfirmed: "unconfirmed",
	KindAuth:        "auth",
	KindTransport:   "transport",
	KindStale:       "stale",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Result struct {
	Kind Kind
	Err  error
}

func (r Result) OK() bool { return r.Kind == KindOK }

var ok = Result{Kind: KindOK}

func fail(k Kind, err error) Result {
	return Result{Kind: k, Err: err}
}

// remoteFailure maps an error from the book service to a result.
func remoteFailure(err error) Result {
	if errors.Is(err, remote.ErrAuth) {
		return fail(KindAuth, err)
	}
	return fail(KindTransport, err)
}
