package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWire(t *testing.T) {
	log := zerolog.Nop()

	container, err := Wire(log)
	require.NoError(t, err)
	require.NotNil(t, container)

	assert.NotZero(t, container.SolverConfig.TimeLimitSeconds)
	assert.NotNil(t, container.TradingDays)
}
