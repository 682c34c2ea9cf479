package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
	"github.com/rakapradana/mebelio/internal/config"
	"github.com/rakapradana/mebelio/pkg/rajaongkir"
	"github.com/redis/go-redis/v9"
)

type Endpoints struct {
	DB          *sql.DB
	RedisClient *redis.Client
	RateClient  rajaongkir.Client
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	h, err := health.New(
		health.WithComponent(health.Component{

			Name:    "mebelio",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(
			health.Config{
				Name:      "database",
				Timeout:   3 * time.Second,
				SkipOnErr: false,
				Check: postgres.New(postgres.Config{
					DSN: cfg.Database.GetDSN(),
				}),
			},
			health.Config{
				Name:      "redis",
				Timeout:   2 * time.Second,
				SkipOnErr: false,
				Check: healthRedis.New(
					healthRedis.Config{
						DSN: cfg.RedisConnect.GetDSN(),
					},
				),
			},
			health.Config{
				Name:    "shipping-rates",
				Timeout: 5 * time.Second,
				// Checkout degrades to an empty rate list when the provider
				// is down, so this check must not fail the whole service.
				SkipOnErr: true,
				Check: func(ctx context.Context) error {
					if endpoints.RateClient == nil {
						return fmt.Errorf("shipping rate client is not initialized")
					}
					if _, err := endpoints.RateClient.SearchDestination(ctx, "jakarta"); err != nil {
						return fmt.Errorf("failed to reach shipping rate provider: %w", err)
					}
					return nil
				},
			},
		),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
