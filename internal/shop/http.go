package shop

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = MaxImageBytes + 1<<20

	defaultTokenTTL = 15 * time.Minute
)

type Server struct {
	Store    *Store
	Tokens   *TokenMaker
	TokenTTL time.Duration
	Log      *zap.Logger
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = CategoryAll
	}
	kit.WriteJSON(w, http.StatusOK, s.Store.FilteredProducts(q.Get("q"), category))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.Store.Product(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.Categories())
}

func (s *Server) handleGetCart(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.CartSummary())
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Qty       *int   `json:"qty"`
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}

	p, ok := s.Store.Product(strings.TrimSpace(req.ProductID))
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"product_id": req.ProductID})
		return
	}

	line, err := s.Store.AddToCart(r.Context(), p, req.Size, qty)
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrInvalidSize):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), map[string]any{"sizes": p.Sizes})
	case errors.Is(err, ErrInsufficientStock):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), map[string]any{"stock": p.Stock})
	case err != nil:
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	default:
		kit.WriteJSON(w, http.StatusOK, line)
	}
}

type updateCartItemReq struct {
	Qty int `json:"qty"`
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateCartItemReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	line, found, err := s.Store.UpdateCartItem(r.Context(), id, req.Qty)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, line)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Store.RemoveCartItem(r.Context(), id) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s.Store.ClearCart(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type checkoutResp struct {
	Status string `json:"status"`
	CartSummary
}

// handleCheckout is a placeholder: no payment, no stock change, cart kept.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sum := s.Store.CartSummary()
	if len(sum.Lines) == 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "cart is empty", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, checkoutResp{Status: "simulated", CartSummary: sum})
}

type loginReq struct {
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string `json:"access_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	session, err := s.Store.Login(r.Context(), req.Password)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	tok, err := s.Tokens.New(session, ttl)
	if err != nil {
		s.logger().Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{AccessToken: tok})
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{"logged": s.Store.AdminLogged()})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Store.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	err := s.Store.ChangePassword(r.Context(), req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		kit.WriteError(w, r, http.StatusUnauthorized, "current password incorrect", nil)
	case errors.Is(err, ErrPasswordTooShort):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), map[string]any{"min_len": MinPasswordLen})
	case err != nil:
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &in); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, s.Store.AddProduct(r.Context(), in))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch ProductPatch
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}
	if err := patch.Validate(); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	p, ok := s.Store.UpdateProduct(r.Context(), id, patch)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Store.DeleteProduct(r.Context(), id) {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.Store.Product(id); !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	f, _, err := r.FormFile("image")
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "image file required", map[string]any{"cause": err.Error()})
		return
	}
	defer f.Close()

	uri, err := EncodeImage(f)
	switch {
	case errors.Is(err, ErrImageTooLarge):
		kit.WriteError(w, r, http.StatusRequestEntityTooLarge, err.Error(), map[string]any{"max_bytes": MaxImageBytes})
		return
	case errors.Is(err, ErrNotImage), errors.Is(err, ErrEmptyImage):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		kit.WriteError(w, r, http.StatusBadRequest, "read image", map[string]any{"cause": err.Error()})
		return
	}

	p, ok := s.Store.UpdateProduct(r.Context(), id, ProductPatch{Image: &uri})
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

// requireAdmin needs a valid bearer token whose session is still open;
// logout therefore revokes every outstanding token for good.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := kit.BearerToken(r)
		if !ok {
			kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
			return
		}
		c, err := s.Tokens.Parse(tok)
		if err != nil {
			kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		if !s.Store.SessionActive(c.ID) {
			kit.WriteError(w, r, http.StatusUnauthorized, "session ended", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
