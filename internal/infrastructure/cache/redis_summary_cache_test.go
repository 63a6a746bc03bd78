package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/getraenkekasse/internal/infrastructure/cache"
)

func TestRedisSummaryCache_SinServidor(t *testing.T) {
	// Puerto 1: nadie escucha, la conexión se rechaza de inmediato.
	c := cache.NewRedisSummaryCache("127.0.0.1:1", "", 0, "getraenkekasse:summary")
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, c.Ping(ctx))
}

func TestRedisSummaryCache_ResumenNilNoEscribe(t *testing.T) {
	c := cache.NewRedisSummaryCache("127.0.0.1:1", "", 0, "getraenkekasse:summary")
	defer c.Close()

	assert.NoError(t, c.SetSummary(context.Background(), nil, time.Minute))
}
