package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/common"
	"google.golang.org/grpc/codes"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found on server")
	ErrNotLoggedIn  = fmt.Errorf("not logged in: %w", ErrUnauthorized)
)

// RejectedError is a validation or conflict response from the server.
type RejectedError struct {
	Code    codes.Code
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Unwrap() error {
	if e.Code == codes.AlreadyExists {
		return common.ErrorAlreadyExists
	}
	return common.ErrorValidation
}
