package model

import (
	"errors"
	"fmt"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/wallet"
)

type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrNotFound         ErrorCode = "NOT_FOUND"
	ErrNotConnected     ErrorCode = "NOT_CONNECTED"
	ErrTooSoon          ErrorCode = "TOO_SOON"
	ErrImageUnavailable ErrorCode = "IMAGE_UNAVAILABLE"
	ErrRejected         ErrorCode = "USER_REJECTED"
	ErrMintFailed       ErrorCode = "MINT_FAILED"
	ErrInternal         ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
// Kind carries the mint classification when there is one.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Kind    mint.Kind `json:"kind,omitempty"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// FromError projects err for the boundary. Mint failures keep their kind and
// human message; wallet failures read NOT_CONNECTED; anything else is INTERNAL.
func FromError(err error) *CodedError {
	if err == nil {
		return nil
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce
	}
	var me *mint.Error
	if errors.As(err, &me) {
		return &CodedError{Code: codeFor(me.Kind), Kind: me.Kind, Message: me.Message()}
	}
	if errors.Is(err, wallet.ErrConnection) {
		return NewError(ErrNotConnected, err.Error())
	}
	if errors.Is(err, wallet.ErrInvalidIdentity) {
		return NewError(ErrInvalidRequest, err.Error())
	}
	return NewError(ErrInternal, err.Error())
}

func codeFor(kind mint.Kind) ErrorCode {
	switch kind {
	case mint.KindConnectionRequired:
		return ErrNotConnected
	case mint.KindDebounceRejected:
		return ErrTooSoon
	case mint.KindResolutionUnavailable:
		return ErrImageUnavailable
	case mint.KindUserRejected:
		return ErrRejected
	default:
		return ErrMintFailed
	}
}
