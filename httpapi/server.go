// Package httpapi serves the minting page's backend: variant listing, image
// resolution for preview tiles, the wallet session and the mint action.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/model"
	"xdao.co/cnftmint/preview"
	"xdao.co/cnftmint/wallet"
)

// Minter is the mint action. *mint.Orchestrator implements it.
type Minter interface {
	Mint(ctx context.Context) (mint.Result, error)
	Variants() []mint.Variant
}

type Options struct {
	Minter   Minter
	Images   preview.ImageResolver
	Wallet   wallet.Provider
	Logger   *zap.Logger
	Gatherer prometheus.Gatherer

	// ResolveTimeout bounds one image resolution. 0 means no bound beyond
	// the request context.
	ResolveTimeout time.Duration
}

type Server struct {
	minter  Minter
	images  preview.ImageResolver
	wallet  wallet.Provider
	log     *zap.Logger
	timeout time.Duration
	router  chi.Router
}

func New(opts Options) (*Server, error) {
	if opts.Minter == nil || opts.Images == nil || opts.Wallet == nil {
		return nil, errors.New("httpapi: minter, images and wallet are required")
	}
	s := &Server{
		minter:  opts.Minter,
		images:  opts.Images,
		wallet:  opts.Wallet,
		log:     opts.Logger,
		timeout: opts.ResolveTimeout,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/variants", s.listVariants)
	r.Get("/variants/{index}/image", s.variantImage)
	r.Get("/wallet", s.getWallet)
	r.Post("/wallet/connect", s.connectWallet)
	r.Post("/wallet/disconnect", s.disconnectWallet)
	r.Post("/mint", s.mint)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) listVariants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.VariantsFrom(s.minter.Variants()))
}

func (s *Server) variantImage(w http.ResponseWriter, r *http.Request) {
	vs := s.minter.Variants()
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(vs) {
		writeError(w, model.NewError(model.ErrNotFound, "no such variant"))
		return
	}
	writeJSON(w, http.StatusOK, s.resolve(r.Context(), vs[idx].MetadataURI))
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.WalletFrom(s.wallet))
}

func (s *Server) connectWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.wallet.Connect(r.Context()); err != nil {
		writeError(w, model.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, model.WalletFrom(s.wallet))
}

func (s *Server) disconnectWallet(w http.ResponseWriter, r *http.Request) {
	if err := s.wallet.Disconnect(); err != nil {
		writeError(w, model.FromError(err))
		return
	}
	writeJSON(w, http.StatusOK, model.WalletFrom(s.wallet))
}

// mint runs one mint and, on success, resolves the minted item's image.
func (s *Server) mint(w http.ResponseWriter, r *http.Request) {
	res, err := s.minter.Mint(r.Context())
	if err != nil {
		writeError(w, model.FromError(err))
		return
	}
	out := model.MintResultFrom(res)
	img := s.resolve(r.Context(), res.URI)
	out.Image = &img
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) resolve(ctx context.Context, ref string) model.Image {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	img, ok := s.images.ResolveImage(ctx, ref)
	return model.ImageFrom(img, ok)
}

func statusFor(code model.ErrorCode) int {
	switch code {
	case model.ErrInvalidRequest:
		return http.StatusBadRequest
	case model.ErrNotFound:
		return http.StatusNotFound
	case model.ErrNotConnected:
		return http.StatusPreconditionFailed
	case model.ErrTooSoon:
		return http.StatusTooManyRequests
	case model.ErrRejected:
		return http.StatusConflict
	case model.ErrMintFailed, model.ErrImageUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, e *model.CodedError) {
	writeJSON(w, statusFor(e.Code), map[string]any{"error": e})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
