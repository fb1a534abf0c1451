package diag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-scout/internal/device"
)

func TestStress_CPU(t *testing.T) {
	backend := device.NewCPUBackend()

	res, err := Stress(context.Background(), backend, 64, 42)
	require.NoError(t, err)

	assert.Equal(t, "CPU", res.Backend)
	assert.Equal(t, 64, res.Size)

	// Uniform [0,1) inputs: every output element is a sum of 64 products,
	// so the mean sits near 64 * 0.25 = 16.
	assert.InDelta(t, 16.0, res.Mean, 4.0)
	assert.GreaterOrEqual(t, res.Min, 0.0)
	assert.LessOrEqual(t, res.Min, res.Mean)
	assert.GreaterOrEqual(t, res.Max, res.Mean)
}

func TestStress_Deterministic(t *testing.T) {
	backend := device.NewCPUBackend()

	a, err := Stress(context.Background(), backend, 32, 7)
	require.NoError(t, err)
	b, err := Stress(context.Background(), backend, 32, 7)
	require.NoError(t, err)

	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Min, b.Min)
	assert.Equal(t, a.Max, b.Max)
}
