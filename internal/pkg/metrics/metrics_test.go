package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStat struct{ acquired, idle, total int32 }

func (f fakeStat) AcquiredConns() int32 { return f.acquired }
func (f fakeStat) IdleConns() int32     { return f.idle }
func (f fakeStat) TotalConns() int32    { return f.total }

func TestUpdateDBPoolMetrics(t *testing.T) {
	UpdateDBPoolMetrics(fakeStat{acquired: 3, idle: 7, total: 10})
	assert.Equal(t, 3.0, testutil.ToFloat64(DBPoolConnsAcquired))
	assert.Equal(t, 7.0, testutil.ToFloat64(DBPoolConnsIdle))
	assert.Equal(t, 10.0, testutil.ToFloat64(DBPoolConnsOpen))

	UpdateDBPoolMetrics(nil)
}

func TestObserveCache(t *testing.T) {
	before := testutil.ToFloat64(CacheHits.WithLabelValues("test"))
	ObserveCache("test", true)
	ObserveCache("test", false)
	assert.Equal(t, before+1, testutil.ToFloat64(CacheHits.WithLabelValues("test")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(CacheMisses.WithLabelValues("test")), 1.0)
}

func TestHandler_ExposesEngineMetrics(t *testing.T) {
	TourRescores.WithLabelValues("ok").Inc()

	app := fiber.New()
	app.Use(Middleware())
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "venueconnect_engine_tour_rescores_total"))
}
