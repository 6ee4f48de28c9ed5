package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Service is the session gateway: it accepts participant WebSocket
// connections, routes their reports and commands through the session
// state, and bridges events to peer instances over JetStream
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	eventConsumer     *EventConsumer
	stateHandler      *StateHandler
	sessions          *SessionManager
}

// Config holds configuration for the session gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
	JetStreamConfig  JetStreamConfig

	// UpdateInterval is how often participants are expected to rebroadcast
	// position reports; staleness filtering derives from it
	UpdateInterval time.Duration
}

// DefaultConfig returns default configuration for the session gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		JetStreamConfig:  DefaultJetStreamConfig(),
		UpdateInterval:   5 * time.Second,
	}
}

// NewService creates a new session gateway service. The catalog may be nil.
func NewService(config Config, catalog TrackCatalog, clock clockwork.Clock) (*Service, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sessions := NewSessionManager(config.UpdateInterval, catalog, clock)
	connectionManager := NewConnectionManager(config.ConnectionConfig, sessions, nil)
	wsHandler := NewWebSocketHandler(connectionManager)

	eventConsumer, err := NewEventConsumer(connectionManager, sessions, config.JetStreamConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}
	connectionManager.SetPublisher(eventConsumer)

	stateHandler := NewStateHandler(sessions)

	return &Service{
		connectionManager: connectionManager,
		wsHandler:         wsHandler,
		eventConsumer:     eventConsumer,
		stateHandler:      stateHandler,
		sessions:          sessions,
	}, nil
}

// Sessions exposes the session manager for embedding callers
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// Start begins the gateway service
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting session gateway service")

	// Start connection manager
	go s.connectionManager.Start(ctx)

	// Start JetStream event consumer
	go func() {
		if err := s.eventConsumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	log.Info().Msg("session gateway service shutting down")
	return s.Stop()
}

// Stop gracefully shuts down the gateway service
func (s *Service) Stop() error {
	// Stop event consumer
	if err := s.eventConsumer.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop event consumer")
	}

	// Connection manager will stop when context is cancelled
	log.Info().Msg("session gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and REST HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("session gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() map[string]interface{} {
	stats := s.connectionManager.GetConnectionStats()
	stats["service"] = "session_gateway"
	stats["status"] = "running"
	return stats
}
