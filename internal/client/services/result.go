package services

import (
	"errors"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/common"
)

// Kind classifies the outcome of a mutation.
type Kind int

const (
	// None means the change is applied and confirmed, or queued without
	// a remote attempt.
	None Kind = iota
	// Transient means the remote call failed in a retryable way; the
	// change is queued.
	Transient
	// Validation means the input was rejected and retrying it as is
	// cannot succeed.
	Validation
	// Unauthorized means the session is missing or expired.
	Unauthorized
	// NotFound means the target does not exist.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case None:
		return "ok"
	case Transient:
		return "transient"
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not-found"
	}
	return "unknown"
}

// Result is what every mutation resolves to.
type Result struct {
	Kind    Kind
	Message string
}

// OK reports whether the mutation needs no attention from the user.
func (r Result) OK() bool { return r.Kind == None }

// Queued reports whether the change is kept for a later sync.
func (r Result) Queued() bool { return r.Kind == Transient || r.Kind == Unauthorized }

func (r Result) String() string {
	if r.Message == "" {
		return r.Kind.String()
	}
	return r.Kind.String() + ": " + r.Message
}

// KindOf maps an error from the transport, the validators or the local
// dictionaries onto a Kind.
func KindOf(err error) Kind {
	var rejected *client.RejectedError
	switch {
	case err == nil:
		return None
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, common.ErrorUnauthorized):
		return Unauthorized
	case errors.Is(err, client.ErrNotFound), errors.Is(err, common.ErrorNotFound):
		return NotFound
	case errors.As(err, &rejected),
		errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorAlreadyExists):
		return Validation
	}
	return Transient
}

func resultOf(err error) Result {
	if err == nil {
		return Result{}
	}
	return Result{Kind: KindOf(err), Message: err.Error()}
}

func notFound(msg string) Result {
	return Result{Kind: NotFound, Message: msg}
}
