// Command cnftmint-signerd serves a submitter backend over the mintrpc Signer
// gRPC service, so minting front ends never hold the signing key.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"xdao.co/cnftmint/logging"
	"xdao.co/cnftmint/mintrpc"
	"xdao.co/cnftmint/submitter"

	_ "xdao.co/cnftmint/submitter/dryrun"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet("cnftmint-signerd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	listen := fs.String("listen", "127.0.0.1:7600", "listen address")
	backend := fs.String("backend", "dryrun", "submitter backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")
	logLevel := fs.String("log-level", "info", "log level")
	logFormat := fs.String("log-format", "json", "log format (console or json)")

	submitter.RegisterFlags(fs, submitter.UsageDaemon)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *listBackends {
		for _, b := range submitter.List(submitter.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(out, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	log, err := logging.New(*logLevel, *logFormat, errOut)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	sub, closeFn, err := submitter.OpenWithFlags(*backend, submitter.UsageDaemon, nil, fs)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer lis.Close()

	s := grpc.NewServer()
	mintrpc.RegisterSignerServer(s, &mintrpc.Server{Submitter: sub, Name: *backend, Logger: log})

	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	log.Info("listening", zap.String("addr", lis.Addr().String()), zap.String("backend", *backend))
	if err := s.Serve(lis); err != nil && ctx.Err() == nil {
		log.Error("serve failed", zap.Error(err))
		return 1
	}
	return 0
}
