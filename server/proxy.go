package server

import (
	"bytes"
	"io"
	"net/http"
)

// forward relays a request to the showcase backend through the session's
// authenticated fetch, so expired tokens are refreshed and a mid-flight 401
// is retried exactly once. The body is buffered to make the replay possible.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, method, path string) {
	var body io.Reader
	if r.Body != nil {
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(r.Context(), method, s.config.GetBackendURL()+path, body)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	req.URL.RawQuery = r.URL.RawQuery

	resp, err := s.session.Do(r.Context(), req)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	defer resp.Body.Close()

	// The backend already speaks the portal's envelope; relay it untouched.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("relay interrupted")
	}
}

// ForwardHandler adapts forward to a route, deriving the backend path from
// the request's wildcard segments.
func (s *Server) ForwardHandler(pathFor func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, r.Method, pathFor(r))
	}
}
