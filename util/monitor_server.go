package util

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// MonitorServer serves the status API. Restart picks up a changed details_port.
type MonitorServer struct {
	running *sync.Mutex
	srv     *http.Server
	srvMu   sync.RWMutex // protects srv field
	mux     *http.ServeMux
	port    func() int
}

func NewMonitorServer() *MonitorServer {
	return &MonitorServer{
		running: &sync.Mutex{},
		srv:     &http.Server{},
		mux:     http.NewServeMux(),
		port:    func() int { return Config.GetInt("details_port") },
	}
}

func (s *MonitorServer) Start() error {
	if !s.running.TryLock() {
		return fmt.Errorf("already running")
	}
	newSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port()),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.srvMu.Lock()
	s.srv = newSrv
	s.srvMu.Unlock()
	go func() {
		defer s.running.Unlock()
		if err := newSrv.ListenAndServe(); err != http.ErrServerClosed {
			Logger.Warn().Msgf("Problem loading monitor server: %v", err)
		}
		Logger.Debug().Msg("monitor server shutdown")
	}()
	return nil
}

func (s *MonitorServer) AddHandler(path string, handler func(http.ResponseWriter, *http.Request)) {
	s.mux.HandleFunc(path, handler)
}

// Stop shuts the server down and waits until it has exited.
func (s *MonitorServer) Stop(ctx context.Context) {
	if s.running.TryLock() { // not running
		s.running.Unlock()
		return
	}
	s.srvMu.RLock()
	currentSrv := s.srv
	s.srvMu.RUnlock()
	if err := currentSrv.Shutdown(ctx); err != nil {
		Logger.Error().Msgf("Error shutting down monitor server: %v", err)
	}
	s.running.Lock() // released by the serve goroutine on exit
	s.running.Unlock()
}

func (s *MonitorServer) Restart() {
	Logger.Debug().Msg("restarting monitor server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)
	Logger.Debug().Msg("http not running - good for startup")
	if err := s.Start(); err != nil {
		Logger.Error().Msgf("Error starting monitor server: %v", err)
	}
}
