// Package httpserver is a thin wrapper over net/http serving whichever mux
// the binary assembled.
package httpserver

import (
	"net/http"

	"github.com/apex/log"
)

func Start(addr string, mux *http.ServeMux) error {
	log.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
