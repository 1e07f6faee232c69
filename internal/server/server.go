// Package server exposes expression evaluation over HTTP.
//
// GET or POST /eval?expr=... responds with the formatted value of expr.
// Syntax errors respond 400 and arithmetic errors 422, each with the error
// message as the body. /stats serves the expvar counters below.
package server

import (
	"errors"
	"expvar"
	"fmt"
	"log"
	"net"
	"time"
	"unicode/utf8"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/expvarhandler"

	"github.com/zephyrtronium/calc"
)

// Various counters - see https://pkg.go.dev/expvar for details.
var (
	// Number of /eval calls.
	evalCalls = expvar.NewInt("evalCalls")

	// Counters for each kind of outcome.
	evalOK               = expvar.NewInt("evalOK")
	evalSyntaxErrors     = expvar.NewInt("evalSyntaxErrors")
	evalArithmeticErrors = expvar.NewInt("evalArithmeticErrors")
	evalRejected         = expvar.NewInt("evalRejected")
)

// DefaultMaxLength is the default limit on the length of an expression in
// runes.
const DefaultMaxLength = 1000

// Server evaluates expressions for HTTP clients.
type Server struct {
	places int
	maxLen int
	srv    *fasthttp.Server
}

// Option is an option used when creating a Server.
type Option func(*Server)

// Places sets the number of decimal places in results that are not integers.
func Places(n int) Option {
	return func(s *Server) {
		s.places = n
	}
}

// MaxLength sets the longest expression, in runes, that will be evaluated.
func MaxLength(n int) Option {
	return func(s *Server) {
		s.maxLen = n
	}
}

// New creates a server.
func New(opts ...Option) *Server {
	s := Server{
		places: calc.DefaultPlaces,
		maxLen: DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.maxLen <= 0 {
		s.maxLen = DefaultMaxLength
	}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "calc",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return &s
}

// Handler routes a request.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/eval":
		s.eval(ctx)
	case "/stats":
		expvarhandler.ExpvarHandler(ctx)
	default:
		ctx.NotFound()
	}
}

func (s *Server) eval(ctx *fasthttp.RequestCtx) {
	evalCalls.Add(1)
	if !ctx.IsGet() && !ctx.IsPost() {
		evalRejected.Add(1)
		// Error resets the response headers.
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		ctx.Response.Header.Set(fasthttp.HeaderAllow, "GET, POST")
		return
	}
	expr := string(ctx.FormValue("expr"))
	if n := utf8.RuneCountInString(expr); n > s.maxLen {
		evalRejected.Add(1)
		ctx.Error(fmt.Sprintf("expression too long (%d characters), maximum allowed: %d", n, s.maxLen), fasthttp.StatusRequestEntityTooLarge)
		return
	}
	v, err := calc.EvalString(expr)
	if err != nil {
		var ae *calc.ArithmeticError
		if errors.As(err, &ae) {
			evalArithmeticErrors.Add(1)
			ctx.Error(err.Error(), fasthttp.StatusUnprocessableEntity)
			return
		}
		evalSyntaxErrors.Add(1)
		ctx.Error(err.Error(), fasthttp.StatusBadRequest)
		return
	}
	evalOK.Add(1)
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString(calc.Format(v, s.places) + "\n")
}

// Serve serves HTTP on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

// ListenAndServe serves HTTP on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Starting HTTP server on %q", addr)
	return s.srv.ListenAndServe(addr)
}

// Shutdown stops the server, waiting for open connections to finish.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}
