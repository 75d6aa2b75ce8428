package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/internal/devserver/journalrepo"
	"github.com/jrsteele09/go-journal-client/internal/devserver/refreshrepo"
	"github.com/jrsteele09/go-journal-client/users"
	fakeuserrepo "github.com/jrsteele09/go-journal-client/users/repofake"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Params holds the stores behind the development backend.
type Params struct {
	Config        config.Config
	Users         users.Repo
	Journal       journalrepo.Repo
	RefreshTokens refreshrepo.Repo
}

// Server is an in-process stand-in for the journal backend. It serves the
// same routes and token semantics as the production API.
type Server struct {
	env           string
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	users         users.Repo
	journal       journalrepo.Repo
	refreshTokens refreshrepo.Repo
	signer        *HMACSigner
	logger        zerolog.Logger
	now           func() time.Time

	mu                sync.Mutex
	accessExpiry      time.Duration
	rotate            bool
	failRefresh       bool
	refreshHold       chan struct{}
	issued            map[string]struct{} // jti of every access token issued
	revoked           map[string]struct{}
	lastAuthorization string
	refreshCalls      atomic.Int32
}

// Option modifies a Server at construction time.
type Option func(*Server)

func WithNowTime(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates the server, seeds the demo account and categories and
// registers its routes.
func New(params Params, options ...Option) (*Server, error) {
	if params.Config == nil {
		return nil, errors.New("[devserver New] Config is required")
	}
	if params.Users == nil || params.Journal == nil || params.RefreshTokens == nil {
		return nil, errors.New("[devserver New] Users, Journal and RefreshTokens repos are required")
	}

	s := &Server{
		env:           params.Config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        params.Config,
		users:         params.Users,
		journal:       params.Journal,
		refreshTokens: params.RefreshTokens,
		signer:        NewHMACSigner(params.Config.GetSigningSecret()),
		logger:        zlog.Logger,
		now:           time.Now,
		accessExpiry:  params.Config.GetAccessTokenExpiry(),
		rotate:        params.Config.GetRotateRefreshTokens(),
		issued:        make(map[string]struct{}),
		revoked:       make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[devserver New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

// logRoute writes a coloured route line. It is only called in DEV, where the
// logger writes to the console.
func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.logger.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// NewInMemory creates a Server backed by in-memory stores.
func NewInMemory(cfg config.Config, options ...Option) (*Server, error) {
	return New(Params{
		Config:        cfg,
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Journal:       journalrepo.NewInMemoryRepo(),
		RefreshTokens: refreshrepo.NewInMemoryRepo(),
	}, options...)
}
