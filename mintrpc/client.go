// Package mintrpc carries mint submissions to a remote signer over gRPC.
//
// The client implements mint.Submitter, so an Orchestrator can hand its
// requests to a signer daemon holding the wallet key. The server wraps any
// mint.Submitter.
package mintrpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/signature"
)

// Client implements mint.Submitter over a Signer gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client SignerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra is appended to the default dial options (insecure transport).
	Extra []grpc.DialOption
}

// Dial creates a client for target. The connection is established lazily on
// the first RPC.
func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewSignerClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Submit(ctx context.Context, req mint.Request) (signature.Result, error) {
	in, err := encodeRequest(req)
	if err != nil {
		return signature.Result{}, err
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Submit(ctx, in)
	if err != nil {
		return signature.Result{}, mapRPC(err)
	}
	return decodeResult(reply), nil
}

// Backend returns the name of the submitter the daemon wraps.
func (c *Client) Backend(ctx context.Context) (string, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Backend(ctx, wrapperspb.String(""))
	if err != nil {
		return "", mapRPC(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
