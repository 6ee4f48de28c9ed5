package main

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/groupcast/go/internal/catalog"
	"github.com/mcdev12/groupcast/go/internal/gateway"
)

type Services struct {
	Catalog        *catalog.App
	CatalogHandler *catalog.Handler
	Gateway        *gateway.Service
}

func setupServices(pool *pgxpool.Pool, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Gateway

	// Catalog
	catalogRepo := catalog.NewRepository(pool)
	catalogApp := catalog.NewApp(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogApp)

	// Session gateway
	gatewayConfig := gateway.Config{
		ConnectionConfig: gateway.DefaultConnectionConfig(),
		JetStreamConfig: gateway.JetStreamConfig{
			URL:           config.Nats.URL,
			StreamName:    config.Nats.StreamName,
			ConsumerName:  config.Nats.ConsumerName,
			SubjectFilter: config.Nats.SubjectFilter,
			SubjectPrefix: config.Nats.SubjectPrefix,
			MaxDeliver:    5,
			AckWait:       30 * time.Second,
			MaxAckPending: 100,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		UpdateInterval: config.UpdateInterval(),
	}

	gatewayService, err := gateway.NewService(gatewayConfig, catalogApp, clockwork.NewRealClock())
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway service: %w", err)
	}

	return &Services{
		Catalog:        catalogApp,
		CatalogHandler: catalogHandler,
		Gateway:        gatewayService,
	}, nil
}
