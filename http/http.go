package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// ShutdownTimeout is the time given to servers to finish their requests
// once the context is done.
const ShutdownTimeout = time.Second * 5

// ListenAndServe runs the given servers until ctx is done. It returns once
// every server has stopped.
func ListenAndServe(ctx context.Context, servers ...*http.Server) {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-stopped:
			return
		case <-ctx.Done():
		}
		shutdown(servers)
	}()

	var wg sync.WaitGroup
	wg.Add(len(servers))
	for _, s := range servers {
		go func() {
			defer wg.Done()
			serve(s)
		}()
	}
	wg.Wait()
}

func serve(s *http.Server) {
	logs.WithTag("addr", s.Addr).Info("server listening")

	err := s.ListenAndServe()
	if err == nil || err == http.ErrServerClosed {
		logs.WithTag("addr", s.Addr).Info("server closed")
		return
	}
	logs.Warn(errors.New("server stopped unexpectedly").
		WithTag("addr", s.Addr).
		Wrap(err))
}

func shutdown(servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			logs.Warn(errors.New("server shutdown failed").
				WithTag("addr", s.Addr).
				Wrap(err))
		}
	}
}

// MetricsPathFormatter returns the path recorded by the http metrics. Paths
// of redirects, bad requests and unrouted requests are dropped. Level ids
// are collapsed so that each level does not get its own series.
func MetricsPathFormatter(statusCode int, path string) string {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusMethodNotAllowed:
		return ""
	}

	if id, ok := strings.CutPrefix(path, LevelsPath); ok && id != "" {
		return LevelsPath + ":id"
	}
	return path
}
