// Package web is the browser front end: a server-rendered calculator page
// that works with plain form posts and upgrades to a websocket for live
// preview when scripts are available.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/zephyrtronium/scicalc/internal/theme"
	"github.com/zephyrtronium/scicalc/session"
)

// CookieName is the cookie holding a browser's session id.
const CookieName = "scicalc_session"

//go:embed templates/index.html
var templates embed.FS

var index = template.Must(template.ParseFS(templates, "templates/index.html"))

// Config holds server configuration.
type Config struct {
	Addr          string
	SessionTTL    time.Duration
	SweepSchedule string
	Theme         theme.Name
	// NewSession creates the session for each new browser.
	NewSession func() *session.Session
	Logger     zerolog.Logger
}

// Server serves calculators to browsers.
type Server struct {
	addr     string
	ttl      time.Duration
	store    *Store
	cron     *cron.Cron
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a server. It does not listen until Run.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		return nil, errors.New("address is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("invalid session ttl: %v", cfg.SessionTTL)
	}
	if cfg.NewSession == nil {
		cfg.NewSession = func() *session.Session { return session.New() }
	}
	s := &Server{
		addr:   cfg.Addr,
		ttl:    cfg.SessionTTL,
		store:  NewStore(cfg.NewSession, cfg.Theme),
		cron:   cron.New(),
		logger: cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if cfg.SweepSchedule != "" {
		_, err := s.cron.AddFunc(cfg.SweepSchedule, s.sweep)
		if err != nil {
			return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
		}
	}
	return s, nil
}

// Store returns the server's session store.
func (s *Server) Store() *Store {
	return s.store
}

// Configure changes the session factory and theme for browsers that arrive
// after the call.
func (s *Server) Configure(factory func() *session.Session, t theme.Name) {
	s.store.Configure(factory, t)
	s.logger.Info().Str("theme", string(t)).Msg("configuration applied to new sessions")
}

func (s *Server) sweep() {
	if n := s.store.Sweep(s.ttl); n > 0 {
		s.logger.Info().Int("removed", n).Int("remaining", s.store.Len()).Msg("swept idle sessions")
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /press", s.handlePress)
	mux.HandleFunc("POST /theme", s.handleTheme)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return s.requestID(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.cron.Start()
	defer s.cron.Stop()

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("starting web server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info().Msg("web server stopped")
	return nil
}

// requestID tags each request's logger with a fresh id.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := gonanoid.New()
		if err != nil {
			id = "unknown"
		}
		w.Header().Set("X-Request-Id", id)
		log := s.logger.With().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
		log.Debug().Dur("elapsed", time.Since(start)).Msg("request")
	})
}

// entry finds or creates the requester's session and returns the cookie that
// names it.
func (s *Server) entry(r *http.Request) (*http.Cookie, *Entry) {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	nid, e := s.store.Lookup(id)
	if nid != id {
		zerolog.Ctx(r.Context()).Debug().Str("session", nid).Msg("new session")
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    nid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, e
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cookie, e := s.entry(r)
	http.SetCookie(w, cookie)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := index.Execute(w, pageOf(e.Snapshot())); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render failed")
	}
}

func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	cookie, e := s.entry(r)
	http.SetCookie(w, cookie)
	key := r.PostFormValue("key")
	e.Do(func(ss *session.Session, t *theme.Name) { apply(ss, t, key) })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	cookie, e := s.entry(r)
	http.SetCookie(w, cookie)
	e.Do(func(_ *session.Session, t *theme.Name) { *t = t.Toggle() })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// keyMessage is a websocket message from the browser. An empty key asks for
// the current state.
type keyMessage struct {
	Key string `json:"key"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	cookie, e := s.entry(r)
	conn, err := s.upgrader.Upgrade(w, r, http.Header{"Set-Cookie": {cookie.String()}})
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade connection")
		return
	}
	defer conn.Close()
	log.Debug().Str("session", cookie.Value).Msg("client connected")

	for {
		var msg keyMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		// An open page keeps its session alive.
		s.store.Touch(cookie.Value)
		var v View
		e.Do(func(ss *session.Session, t *theme.Name) {
			if msg.Key != "" {
				apply(ss, t, msg.Key)
			}
			v = viewOf(ss, *t)
		})
		if err := conn.WriteJSON(v); err != nil {
			log.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}
