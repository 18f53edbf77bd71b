// Package site serves the embedded player comparison page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded comparison page and its assets at / on mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
