package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/fyp-manager-api/internal/service"
)

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestReadyReflectsDatabase(t *testing.T) {
	ok := NewMetricsHandler(nil, pingFunc(func(context.Context) error { return nil }))
	c, rec := newTestContext(http.MethodGet, "/ready", nil)
	ok.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewMetricsHandler(nil, pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	c, rec = newTestContext(http.MethodGet, "/ready", nil)
	down.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
}

type cachePingFunc func(context.Context) error

func (f cachePingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyReportsCache(t *testing.T) {
	db := pingFunc(func(context.Context) error { return nil })

	up := NewMetricsHandler(nil, db).WithCache(cachePingFunc(func(context.Context) error { return nil }))
	c, rec := newTestContext(http.MethodGet, "/ready", nil)
	up.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"postgres":"up","redis":"up"}}`, rec.Body.String())

	down := NewMetricsHandler(nil, db).WithCache(cachePingFunc(func(context.Context) error { return errors.New("i/o timeout") }))
	c, rec = newTestContext(http.MethodGet, "/ready", nil)
	down.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"up","redis":"down"}}`, rec.Body.String())
}

func TestPrometheusEndpoint(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.GroupCreated()
	h := NewMetricsHandler(metrics, nil)
	c, rec := newTestContext(http.MethodGet, "/metrics", nil)

	h.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "groups_created")
}
