package mintrpc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/submitter"
)

func init() {
	submitter.MustRegister(submitter.Backend{
		Name:        "grpc",
		Description: "remote signer over gRPC (e.g. cnftmint-signerd)",
		Usage:       submitter.UsageCLI,
		Flags: []submitter.Flag{
			{Name: "grpc-target", Usage: "Signer gRPC target host:port"},
			{Name: "grpc-timeout", Default: "30s", Usage: "Per-RPC timeout; 0 disables"},
			{Name: "grpc-max-msg-bytes", Default: "0", Usage: "Max gRPC message size in bytes; 0 uses grpc defaults"},
		},
		Open: func(opts map[string]string) (mint.Submitter, func() error, error) {
			target := strings.TrimSpace(opts["grpc-target"])
			if target == "" {
				return nil, nil, fmt.Errorf("missing --grpc-target")
			}
			timeout, err := time.ParseDuration(opts["grpc-timeout"])
			if err != nil {
				return nil, nil, fmt.Errorf("grpc-timeout: %w", err)
			}
			maxMsg, err := strconv.Atoi(opts["grpc-max-msg-bytes"])
			if err != nil {
				return nil, nil, fmt.Errorf("grpc-max-msg-bytes: %w", err)
			}
			client, err := Dial(target, DialOptions{MaxMsgBytes: maxMsg})
			if err != nil {
				return nil, nil, err
			}
			client.Timeout = timeout
			return client, client.Close, nil
		},
	})
}
