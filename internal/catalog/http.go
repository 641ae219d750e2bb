package catalog

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"MiniCatalog/pkg/kit"
)

const (
	maxBodyBytes = 8 << 20
	readyTimeout = 1 * time.Second
)

const (
	msgNotFound      = "Không tìm thấy sản phẩm"
	msgDuplicateName = "Tên sản phẩm đã tồn tại"
	msgMissingID     = "ID là bắt buộc"
	msgDeleted       = "Xóa sản phẩm thành công"
	msgBadJSON       = "Dữ liệu không hợp lệ"
	msgServerError   = "Lỗi máy chủ"
)

type Server struct {
	Catalog *Catalog
	Log     *zap.Logger

	// WriteLimiter, when set, throttles every mutating route.
	WriteLimiter *kit.IPRateLimiter
}

type messageResp struct {
	Message string `json:"message"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.list)

		r.Group(func(r chi.Router) {
			if s.WriteLimiter != nil {
				r.Use(s.WriteLimiter.Middleware)
			}
			r.Post("/", s.create)
			r.Put("/", s.update)
			r.Delete("/", s.delete)
		})
	})

	s.adminRoutes(r)

	return r
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Catalog.Ping(ctx); err != nil {
		s.log().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		p, err := s.Catalog.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err, "get product failed")
			return
		}
		kit.WriteJSON(w, http.StatusOK, p)
		return
	}

	products, err := s.Catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "list products failed")
		return
	}
	s.writeList(w, r, products)
}

// writeList sends the list with a content digest as ETag and honours
// If-None-Match.
func (s *Server) writeList(w http.ResponseWriter, r *http.Request, products []Product) {
	body, err := json.Marshal(products)
	if err != nil {
		s.writeError(w, r, err, "encode products failed")
		return
	}
	body = append(body, '\n')

	sum := blake2b.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var p Product
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &p); err != nil {
		s.log().Debug("decode product failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusBadRequest, msgBadJSON)
		return
	}

	created, err := s.Catalog.Create(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err, "create product failed")
		return
	}
	kit.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeError(w, r, ErrMissingID, "update product failed")
		return
	}

	var patch ProductPatch
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &patch); err != nil {
		s.log().Debug("decode product patch failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusBadRequest, msgBadJSON)
		return
	}

	updated, err := s.Catalog.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, "update product failed")
		return
	}
	kit.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		s.writeError(w, r, err, "delete product failed")
		return
	}
	kit.WriteJSON(w, http.StatusOK, messageResp{Message: msgDeleted})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingID):
		return http.StatusBadRequest, msgMissingID
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, ErrDuplicateName):
		return http.StatusBadRequest, msgDuplicateName
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, msgServerError
	default:
		return http.StatusInternalServerError, msgServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	status, msg := statusFor(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("id", r.URL.Query().Get("id")),
	}
	if status >= http.StatusInternalServerError {
		s.log().Error(what, fields...)
	} else {
		s.log().Debug(what, fields...)
	}

	kit.WriteError(w, r, status, msg)
}
