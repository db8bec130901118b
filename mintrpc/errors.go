package mintrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/cnftmint/mint"
)

// RemoteError is a failure reported by the signer. Error() is the sender's
// message unchanged, so mint.Classify sees the same text the signer saw.
type RemoteError struct {
	Code    codes.Code
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// ErrInvalidRequest reports a request the signer refused to decode.
var ErrInvalidRequest = errors.New("mintrpc: invalid request")

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	case codes.InvalidArgument:
		return errors.Join(ErrInvalidRequest, &RemoteError{Code: st.Code(), Message: st.Message()})
	default:
		return &RemoteError{Code: st.Code(), Message: st.Message()}
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		// A program failure. The text is what the client classifies.
		return status.Error(codes.Aborted, err.Error())
	}
}

var _ mint.Submitter = (*Client)(nil)
