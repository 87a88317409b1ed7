package utils

import "github.com/gorilla/mux"

// NewRouter returns the root router. Path cleaning is off: routes match on
// path substrings, and a cleaning redirect would answer before the
// middleware chain (CORS included) gets to run.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.SkipClean(true)
	return r
}
