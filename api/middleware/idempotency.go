package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Mahbub-Sajon/srs-publications-server/api/responses"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	pkgredis "github.com/Mahbub-Sajon/srs-publications-server/pkg/redis"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	replayedHeader        = "Idempotent-Replayed"
	maxIdempotencyKeyLen  = 200
	defaultIdempotencyTTL = 24 * time.Hour
)

// idempotentRoutes are the checkout routes whose responses are replayed.
var idempotentRoutes = map[string]string{
	"/create-payment": http.MethodPost,
	"/api/orders":     http.MethodPost,
}

// storedResponse is the JSON document kept under the idempotency key.
// Body is base64 encoded by encoding/json.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

type idempotency struct {
	store pkgredis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// the checkout routes. Requests without the header pass through, and a key
// reused with a different body is rejected with 409. Only 2xx responses are
// stored so a failed attempt can be retried with the same key.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	m := &idempotency{store: store, ttl: ttl, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if store == nil || clientKey == "" || !idempotentRoute(r) {
				next.ServeHTTP(w, r)
				return
			}
			m.serve(w, r, next, clientKey)
		})
	}
}

func (m *idempotency) serve(w http.ResponseWriter, r *http.Request, next http.Handler, clientKey string) {
	ctx := r.Context()
	if len(clientKey) > maxIdempotencyKeyLen {
		responses.WriteError(ctx, m.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(ctx, m.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	hash := hex.EncodeToString(sum[:])
	key := m.store.IdempotencyKey(r.Method+"|"+r.URL.Path, clientKey)

	previous, err := m.lookup(r, key)
	if err != nil {
		responses.WriteError(ctx, m.logg, w, err)
		return
	}
	if previous != nil {
		if previous.RequestHash != hash {
			responses.WriteError(ctx, m.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
			return
		}
		if previous.ContentType != "" {
			w.Header().Set("Content-Type", previous.ContentType)
		}
		w.Header().Set(replayedHeader, "true")
		w.WriteHeader(previous.Status)
		_, _ = w.Write(previous.Body)
		return
	}

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)
	if status := capture.statusCode(); status >= 200 && status < 300 {
		m.persist(r, key, storedResponse{
			Status:      status,
			ContentType: capture.Header().Get("Content-Type"),
			Body:        capture.body.Bytes(),
			RequestHash: hash,
		})
	}
}

// lookup returns nil, nil when nothing is stored under key.
func (m *idempotency) lookup(r *http.Request, key string) (*storedResponse, error) {
	raw, err := m.store.Get(r.Context(), key)
	switch {
	case errors.Is(err, redis.Nil), err == nil && raw == "":
		return nil, nil
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &stored, nil
}

func (m *idempotency) persist(r *http.Request, key string, stored storedResponse) {
	payload, err := json.Marshal(stored)
	if err == nil {
		_, err = m.store.SetNX(r.Context(), key, string(payload), m.ttl)
	}
	if err != nil && m.logg != nil {
		m.logg.Error(r.Context(), "idempotency.persist_failed", err)
	}
}

func idempotentRoute(r *http.Request) bool {
	pattern := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		pattern = rctx.RoutePattern()
	}
	method, ok := idempotentRoutes[pattern]
	return ok && method == r.Method
}

// responseCapture tees the handler's response into a buffer.
type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
