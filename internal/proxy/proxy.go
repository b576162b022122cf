package proxy

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/elazarl/goproxy"

	"github.com/tavgar/pathsniff/internal/intercept"
	"github.com/tavgar/pathsniff/internal/logging"
	"github.com/tavgar/pathsniff/internal/scan"
)

// Server is an intercepting HTTP(S) proxy. Every request that passes through
// is recorded by the Interceptor, and HTML and JavaScript responses are
// scanned for endpoints.
type Server struct {
	prx *goproxy.ProxyHttpServer
	log *logging.Logger
}

// New creates a proxy feeding col. insecure skips upstream TLS verification.
func New(ext *scan.Extractor, col *scan.Collector, icpt *intercept.Interceptor, log *logging.Logger, insecure bool) *Server {
	if log == nil {
		log = logging.Discard()
	}
	prx := goproxy.NewProxyHttpServer()
	prx.Verbose = false
	prx.Tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecure}
	// Enable MITM for HTTPS so requests and response bodies can be inspected.
	prx.OnRequest().HandleConnect(goproxy.AlwaysMitm)

	upstream := icpt.Transport(prx.Tr, scan.SourceProxy)
	prx.OnRequest().DoFunc(func(req *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		ctx.RoundTripper = goproxy.RoundTripperFunc(func(req *http.Request, _ *goproxy.ProxyCtx) (*http.Response, error) {
			return upstream.RoundTrip(req)
		})
		return req, nil
	})

	prx.OnResponse().DoFunc(func(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
		if resp == nil || resp.Body == nil || resp.Request == nil {
			return resp
		}
		src, ok := classify(resp)
		if !ok {
			return resp
		}
		// Only a capped prefix is scanned; the client still gets every byte.
		data, err := io.ReadAll(io.LimitReader(resp.Body, scan.MaxScriptSize+1))
		resp.Body = readCloser{io.MultiReader(bytes.NewReader(data), resp.Body), resp.Body}
		if err != nil {
			log.Warn("read %s: %v", resp.Request.URL, err)
			return resp
		}
		if len(data) > scan.MaxScriptSize {
			log.Warn("%s exceeds %d bytes, scanning only the first %d", resp.Request.URL, scan.MaxScriptSize, scan.MaxScriptSize)
			data = data[:scan.MaxScriptSize]
		}
		n := ext.Scan(col, src, string(data))
		log.Debug("scanned %s: %d matches", resp.Request.URL, n)
		return resp
	})

	return &Server{prx: prx, log: log}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// Handler exposes the proxy as an http.Handler.
func (s *Server) Handler() http.Handler { return s.prx }

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts proxy connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.prx}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("Proxy listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// classify decides whether a response body is worth scanning and under which
// source.
func classify(resp *http.Response) (scan.Source, bool) {
	ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "html"):
		return scan.SourceStaticHTML, true
	case strings.Contains(ct, "javascript") || strings.Contains(ct, "ecmascript"):
		return scan.SourceStaticJS, true
	}
	switch strings.ToLower(path.Ext(resp.Request.URL.Path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return scan.SourceStaticJS, true
	case ".html", ".htm":
		return scan.SourceStaticHTML, true
	}
	return "", false
}
