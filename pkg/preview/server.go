// Package preview serves a live session over HTTP. The page at / shows the
// schema text next to the rendered form; the JSON API under /api applies text
// edits, reloads and radio changes through the session dispatcher and answers
// with the resulting state.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsync/pkg/render"
	"github.com/goliatone/go-formsync/pkg/reveal"
	"github.com/goliatone/go-formsync/pkg/schema"
	"github.com/goliatone/go-formsync/pkg/session"
)

// APIPrefix roots the JSON endpoints.
const APIPrefix = "/api"

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

const maxTextBytes = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPage sets the output rendered at /. It should embed a client talking to
// APIPrefix, such as vanilla.New(vanilla.WithLiveEndpoint(preview.APIPrefix)).
func WithPage(page render.Output) Option {
	return func(s *Server) {
		s.page = page
	}
}

// WithAssets serves files under /assets/, e.g. theme stylesheets.
func WithAssets(files fs.FS) Option {
	return func(s *Server) {
		s.assets = files
	}
}

// Server exposes one session over HTTP.
type Server struct {
	dispatcher *session.Dispatcher
	page       render.Output
	assets     fs.FS
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New builds a Server around d. The dispatcher must be running for requests
// to complete.
func New(d *session.Dispatcher, options ...Option) (*Server, error) {
	if d == nil {
		return nil, errors.New("preview: dispatcher is required")
	}
	s := &Server{
		dispatcher: d,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.page == nil {
		return nil, errors.New("preview: page output is required")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET "+APIPrefix+"/state", s.handleState)
	mux.HandleFunc("POST "+APIPrefix+"/text", s.handleText)
	mux.HandleFunc("POST "+APIPrefix+"/reload", s.handleReload)
	mux.HandleFunc("POST "+APIPrefix+"/change", s.handleChange)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.assets != nil {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(s.assets)))
	}
	s.mux = mux
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request",
		zap.String("id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// State is the JSON body answered by every API endpoint.
type State struct {
	Title       string       `json:"title"`
	Text        string       `json:"text"`
	HTML        string       `json:"html"`
	Reveal      reveal.State `json:"reveal"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
	Error       string       `json:"error,omitempty"`
	Line        int          `json:"line,omitempty"`
	Column      int          `json:"column,omitempty"`
}

// handlePage renders inside the dispatcher turn: the snapshot's form is the
// session's live tree and events mutate it on the dispatcher goroutine.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var (
		out       []byte
		renderErr error
	)
	err := s.dispatcher.Dispatch(r.Context(), session.InspectFunc(func(sess *session.Session) error {
		snapshot, err := sess.Snapshot()
		if err != nil {
			return err
		}
		out, renderErr = s.page.Render(r.Context(), snapshot)
		return nil
	}))
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	if renderErr != nil {
		s.fail(w, r, http.StatusInternalServerError, renderErr)
		return
	}
	w.Header().Set("Content-Type", s.page.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, nil)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTextBytes))
	if err != nil {
		s.fail(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("preview: read text: %w", err))
		return
	}
	s.apply(w, r, session.Edit{Text: string(body)})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, session.Reload{})
}

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("preview: parse form: %w", err))
		return
	}
	field := r.PostForm.Get("field")
	if field == "" {
		s.fail(w, r, http.StatusBadRequest, errors.New("preview: field is required"))
		return
	}
	s.apply(w, r, session.Change{Field: field, Value: r.PostForm.Get("value")})
}

// apply runs ev and captures the resulting state in one dispatcher turn so
// the answer reflects exactly this event.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, ev session.Event) {
	var (
		state    State
		applyErr error
	)
	err := s.dispatcher.Dispatch(r.Context(), session.InspectFunc(func(sess *session.Session) error {
		if ev != nil {
			applyErr = ev.Apply(sess)
		}
		var err error
		state, err = capture(sess)
		return err
	}))
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}

	status := http.StatusOK
	if applyErr != nil {
		status = statusFor(applyErr)
		state.Error = applyErr.Error()
		var parseErr *schema.ParseError
		if errors.As(applyErr, &parseErr) {
			state.Line, state.Column = parseErr.Line, parseErr.Column
		}
		s.logger.Info("event rejected",
			zap.String("id", w.Header().Get(RequestIDHeader)),
			zap.String("path", r.URL.Path),
			zap.Error(applyErr),
		)
	}
	writeJSON(w, status, state)
}

func capture(sess *session.Session) (State, error) {
	text, err := sess.Text()
	if err != nil {
		return State{}, err
	}
	html, err := sess.HTML()
	if err != nil {
		return State{}, err
	}
	return State{
		Title:       sess.Schema().Title,
		Text:        text,
		HTML:        html,
		Reveal:      sess.Reveal(),
		Diagnostics: sess.Diagnostics(),
	}, nil
}

func statusFor(err error) int {
	var parseErr *schema.ParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reveal.ErrUnknownTrigger):
		return http.StatusNotFound
	case errors.Is(err, session.ErrDispatcherStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Warn("request failed",
		zap.String("id", w.Header().Get(RequestIDHeader)),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	writeJSON(w, status, State{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
