package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})

	err := prometheus.Register(CacheHits)
	var already prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &already)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(CacheMisses)
	CacheMisses.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CacheMisses))
}
