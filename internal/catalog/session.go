package catalog

import (
	"context"
	"net/http"
)

type sessionKey struct{}

// sessionScope opens a session for the request and releases it once the
// handler returns.
func (s *Server) sessionScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := s.Gateway.WithSession(r.Context(), func(sess *Session) error {
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
			return nil
		})
		if err != nil {
			s.writeError(w, r, err)
		}
	})
}

func sessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
