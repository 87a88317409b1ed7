package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"subhub/handlers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	allowedMethods = "GET,OPTIONS,PATCH,DELETE,POST,PUT"
	allowedHeaders = "X-CSRF-Token,X-Requested-With,Accept,Accept-Version,Content-Length,Content-MD5,Content-Type,Date,X-Api-Version"
	requestIDKey   = "X-Request-ID"
)

// corsMiddleware handles CORS for every route
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every request with an id, reusing the caller's when present.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDKey))
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDKey, id)
		}
		w.Header().Set(requestIDKey, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += n
	return n, err
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		log.Printf("[api] %s %s -> %d (%d bytes) in %s id=%s",
			r.Method, r.URL.RequestURI(), rec.status, rec.bytes,
			time.Since(start).Round(time.Millisecond), r.Header.Get(requestIDKey))
	})
}

// recoverMiddleware turns a handler panic into a 500 JSON error instead of
// dropping the connection. Once the handler has written headers the response
// is left as is.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			panicked := recover()
			if panicked == nil {
				return
			}
			log.Printf("[api] panic serving %s: %v", r.URL.Path, panicked)
			if rec.status != 0 {
				return
			}
			rec.Header().Set("Content-Type", "application/json")
			rec.WriteHeader(http.StatusInternalServerError)
			if err := json.NewEncoder(rec).Encode(map[string]string{"error": fmt.Sprint(panicked)}); err != nil {
				log.Printf("[api] failed to encode panic response: %v", err)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}

// pathContains matches any request whose path contains fragment.
func pathContains(fragment string) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		return strings.Contains(r.URL.Path, fragment)
	}
}

// Register mounts API endpoints onto the provided router. Routes match on path
// substrings in declaration order, so /api/search and /search both reach Search;
// anything unmatched gets the API description.
func Register(r *mux.Router, subtitlesHandler *handlers.SubtitlesHandler) {
	r.Use(requestIDMiddleware, accessLogMiddleware, recoverMiddleware, corsMiddleware)

	r.MatcherFunc(pathContains("/search")).HandlerFunc(subtitlesHandler.Search)
	r.MatcherFunc(pathContains("/download")).HandlerFunc(subtitlesHandler.Download)
	r.MatcherFunc(pathContains("/sources")).HandlerFunc(subtitlesHandler.Sources)
	r.PathPrefix("/").HandlerFunc(subtitlesHandler.Info)
}
