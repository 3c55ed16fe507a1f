package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-service/internal/dispatch"
	"github.com/example/ride-service/internal/rides"
	"github.com/example/ride-service/internal/routes"
)

// Server wires the public submission form, the admin dashboard API and
// the live websocket channel onto one router.
type Server struct {
	Rides    *rides.Service
	Resolver *routes.Resolver
	WSReg    *dispatch.WSRegistry

	adminToken string
	logger     *slog.Logger
	mux        *mux.Router
}

func NewServer(logger *slog.Logger, svc *rides.Service, resolver *routes.Resolver, wsreg *dispatch.WSRegistry, adminToken string) *Server {
	s := &Server{
		Rides:      svc,
		Resolver:   resolver,
		WSReg:      wsreg,
		adminToken: adminToken,
		logger:     logger,
		mux:        mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	// public
	s.mux.HandleFunc("/api/v1/rides", s.handleCreateRide).Methods("POST")
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/dashboard", s.handleWS)

	// admin
	admin := s.mux.PathPrefix("/api/v1").Subrouter()
	admin.Use(s.adminAuthMiddleware)
	admin.HandleFunc("/quote", s.handleQuote).Methods("POST")
	admin.HandleFunc("/rides", s.handleListRides).Methods("GET")
	admin.HandleFunc("/rides/{id:[0-9]+}", s.handleGetRide).Methods("GET")
	admin.HandleFunc("/rides/{id:[0-9]+}/status", s.handleTransition).Methods("PUT")
	admin.HandleFunc("/rides/{id:[0-9]+}", s.handleDeleteRide).Methods("DELETE")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func newID() string { b := make([]byte, 8); _, _ = rand.Read(b); return hex.EncodeToString(b) }
