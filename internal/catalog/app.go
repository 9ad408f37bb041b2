package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

const (
	greeting     = "Hello, World!"
	maxBodyBytes = 1 << 20
)

type messageResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product,omitempty"`
}

type Server struct {
	Gateway      *Gateway
	Log          *zap.Logger
	WriteLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { kit.WriteText(w, http.StatusOK, greeting) })
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Group(func(rr chi.Router) {
		rr.Use(s.sessionScope)

		rr.Get("/products", s.list)
		rr.Get("/products/{id}", s.get)
		rr.Get("/product/{id}", s.get)
	})

	r.Group(func(wr chi.Router) {
		if s.WriteLimiter != nil {
			wr.Use(s.WriteLimiter.Middleware)
		}
		wr.Use(s.sessionScope)

		wr.Post("/products", s.create)
		wr.Put("/products/{id}", s.update)
		wr.Delete("/products/{id}", s.delete)

		// legacy spellings: id travels in the query string
		wr.Post("/product", s.create)
		wr.Put("/product", s.update)
		wr.Delete("/product", s.delete)
	})

	return r
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Gateway.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := sessionFrom(r.Context()).List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, ok, err := sessionFrom(r.Context()).Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, zap.Int64("id", id))
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, ErrNotFound.Error(), map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.ID == 0 {
		s.writeError(w, r, fmt.Errorf("%w: id required", ErrValidation))
		return
	}

	created, err := sessionFrom(r.Context()).Insert(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err, zap.Int64("id", p.ID))
		return
	}
	kit.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := decodeProduct(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := sessionFrom(r.Context()).Update(r.Context(), id, p)
	if err != nil {
		s.writeError(w, r, err, zap.Int64("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, messageResponse{Message: "product updated", Product: &updated})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := sessionFrom(r.Context()).Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, zap.Int64("id", id))
		return
	}
	kit.WriteJSON(w, http.StatusOK, messageResponse{Message: "product deleted"})
}

// writeError is the single place catalog errors become status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fields ...zap.Field) {
	switch {
	case errors.Is(err, ErrValidation):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, ErrNotFound.Error(), nil)
	case errors.Is(err, ErrConflict):
		kit.WriteError(w, r, http.StatusConflict, ErrConflict.Error(), nil)
	case errors.Is(err, ErrStorageUnavailable):
		s.logger().Error("storage failure", append(fields, zap.Error(err))...)
		kit.WriteError(w, r, http.StatusServiceUnavailable, ErrStorageUnavailable.Error(), nil)
	default:
		s.logger().Error("request failed", append(fields, zap.Error(err))...)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

// productID reads {id} from the path, or ?id= on the legacy routes.
func productID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = r.URL.Query().Get("id")
	}
	if raw == "" {
		return 0, fmt.Errorf("%w: id required", ErrValidation)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be an integer", ErrValidation)
	}
	return id, nil
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (Product, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var p Product
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Product{}, fmt.Errorf("%w: bad json: %v", ErrValidation, err)
	}
	return p, nil
}
