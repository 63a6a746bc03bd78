// Package cache publica el resumen del dashboard en Redis para consumidores externos.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
	"github.com/jhoicas/getraenkekasse/internal/application/dto"
)

var _ dashboard.SummaryCache = (*RedisSummaryCache)(nil)

// RedisSummaryCache guarda el último resumen como JSON bajo una clave fija.
type RedisSummaryCache struct {
	client *redis.Client
	key    string
}

// NewRedisSummaryCache construye el cliente; no abre conexión hasta el primer comando.
func NewRedisSummaryCache(addr, password string, db int, key string) *RedisSummaryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSummaryCache{client: client, key: key}
}

// Ping verifica la conexión.
func (c *RedisSummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close libera el cliente.
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

// SetSummary implementa dashboard.SummaryCache.
func (c *RedisSummaryCache) SetSummary(ctx context.Context, summary *dto.DashboardSummaryDTO, ttl time.Duration) error {
	if summary == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("redis: serializar resumen: %w", err)
	}
	return c.client.Set(ctx, c.key, payload, ttl).Err()
}
