package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xdao.co/cnftmint/httpapi"
	"xdao.co/cnftmint/model"
	"xdao.co/cnftmint/preview"
	"xdao.co/cnftmint/submitter"
	"xdao.co/cnftmint/wallet"
)

func newVariantsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the mintable variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), model.VariantsFrom(ctx.cfg.Mint.Variants))
		},
	}
}

type previewTile struct {
	Index int `json:"index"`
	model.Image
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var index, concurrency int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Resolve the preview image of every variant (or one with --variant)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ctx.resolver()
			if err != nil {
				return err
			}
			variants := ctx.cfg.Mint.Variants
			indexes := make([]int, 0, len(variants))
			if cmd.Flags().Changed("variant") {
				if index < 0 || index >= len(variants) {
					return fmt.Errorf("no variant %d (have %d)", index, len(variants))
				}
				indexes = append(indexes, index)
			} else {
				for i := range variants {
					indexes = append(indexes, i)
				}
			}
			refs := make([]string, 0, len(indexes))
			for _, i := range indexes {
				refs = append(refs, variants[i].MetadataURI)
			}

			states := preview.ResolveAll(cmd.Context(), res, refs, concurrency)
			out := make([]previewTile, 0, len(states))
			for i, st := range states {
				out = append(out, previewTile{Index: indexes[i], Image: model.ImageFrom(st.Image, st.Resolved)})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().IntVar(&index, "variant", 0, "Variant index to preview")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum concurrent resolutions; 0 is unlimited")
	return cmd
}

func newMintCommand(ctx *commandContext) *cobra.Command {
	var owner string
	var skipImage bool
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint one randomly chosen variant to --owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wallet.ParseIdentity(owner)
			if err != nil {
				return fmt.Errorf("--owner: %w", err)
			}
			o, closeFn, err := ctx.orchestrator(wallet.Connected(id))
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := o.Mint(cmd.Context())
			if err != nil {
				return err
			}
			out := model.MintResultFrom(res)
			if !skipImage {
				r, err := ctx.resolver()
				if err != nil {
					return err
				}
				img, ok := r.ResolveImage(cmd.Context(), res.URI)
				view := model.ImageFrom(img, ok)
				out.Image = &view
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Recipient identity (base58)")
	cmd.Flags().BoolVar(&skipImage, "no-image", false, "Do not resolve the minted item's image")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var listen, owner string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the minting API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wallet.ParseIdentity(owner)
			if err != nil {
				return fmt.Errorf("--owner: %w", err)
			}
			w := wallet.NewStatic(id)
			o, closeFn, err := ctx.orchestrator(w)
			if err != nil {
				return err
			}
			defer closeFn()
			res, err := ctx.resolver()
			if err != nil {
				return err
			}
			api, err := httpapi.New(httpapi.Options{
				Minter:         o,
				Images:         res,
				Wallet:         w,
				Logger:         ctx.log.Named("http"),
				Gatherer:       ctx.registry,
				ResolveTimeout: time.Minute,
			})
			if err != nil {
				return err
			}

			if listen == "" {
				listen = ctx.cfg.HTTP.Listen
			}
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			srv := &http.Server{Handler: api, ReadHeaderTimeout: 10 * time.Second}

			sctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-sctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			ctx.log.Info("serving", zap.String("addr", lis.Addr().String()), zap.String("submitter", ctx.cfg.Submitter.Backend))
			if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&owner, "owner", "", "Identity the wallet session connects as (base58)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newSubmittersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submitters",
		Short: "List linked submitter backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range submitter.List(submitter.UsageCLI) {
				if b.Description == "" {
					fmt.Fprintln(cmd.OutOrStdout(), b.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.Name, b.Description)
			}
			return nil
		},
	}
}
