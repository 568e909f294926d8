// Package server serves the public snapshot directory.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Handler serves the files under dir. JSON artifacts are served with
// no-cache, so clients always revalidate against the latest run.
func Handler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, ".json") {
			w.Header().Set("Cache-Control", "no-cache")
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		files.ServeHTTP(w, req)
	})
	return mux
}

func Run(ctx context.Context, dir, addr string) error {
	srv := http.Server{
		Addr:              addr,
		Handler:           Handler(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error)
	go func() { errs <- srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Str("dir", dir).Msg("serving snapshots")

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-errs; err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
