package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/stake-plus/ideabox/src/api/webserver"
)

const certCheckInterval = time.Minute

// HTTPServer runs the REST surface, over TLS when a reloader is set.
type HTTPServer struct {
	srv      *http.Server
	certs    *webserver.CertReloader
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHTTPServer(addr string, handler http.Handler, certs *webserver.CertReloader) *HTTPServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if certs != nil {
		srv.TLSConfig = certs.TLSConfig()
	}
	return &HTTPServer{srv: srv, certs: certs}
}

func (h *HTTPServer) Name() string { return "http" }

// Addr is the bound address once started.
func (h *HTTPServer) Addr() string {
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return h.srv.Addr
}

func (h *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", h.srv.Addr, err)
	}
	h.listener = ln
	h.done = make(chan struct{})

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	if h.certs != nil {
		go h.certs.Watch(runCtx, certCheckInterval)
	}

	go func() {
		defer close(h.done)
		var err error
		if h.certs != nil {
			err = h.srv.ServeTLS(ln, "", "")
		} else {
			err = h.srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http: %v", err)
		}
	}()
	log.Printf("Idea Box API listening on %s (tls=%v)", ln.Addr(), h.certs != nil)
	return nil
}

func (h *HTTPServer) Stop(ctx context.Context) {
	if h.cancel != nil {
		h.cancel()
	}
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := h.srv.Shutdown(shutCtx); err != nil {
		log.Printf("http: shutdown: %v", err)
	}
	if h.done != nil {
		<-h.done
	}
}
