package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	errUpstream := errors.New("upstream down")

	tests := []struct {
		name         string
		primary      func(context.Context) (int, error)
		wantValue    int
		wantDegraded bool
	}{
		{
			name:      "primary succeeds",
			primary:   func(context.Context) (int, error) { return 7, nil },
			wantValue: 7,
		},
		{
			name:         "primary errors",
			primary:      func(context.Context) (int, error) { return 7, errUpstream },
			wantValue:    -1,
			wantDegraded: true,
		},
		{
			name:         "primary panics",
			primary:      func(context.Context) (int, error) { panic("boom") },
			wantValue:    -1,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Do(context.Background(), "test", tt.primary, func() int { return -1 })
			assert.Equal(t, tt.wantValue, out.Value)
			assert.Equal(t, tt.wantDegraded, out.Degraded)
			assert.Equal(t, tt.wantDegraded, out.Err != nil)
		})
	}
}

func TestDoPanicError(t *testing.T) {
	out := Do(context.Background(), "arbitration", func(context.Context) (string, error) {
		panic("nil map")
	}, func() string { return "safe" })

	var pe *PanicError
	require.ErrorAs(t, out.Err, &pe)
	assert.Equal(t, "arbitration", pe.Name)
	assert.Equal(t, "safe", out.Value)
}

func TestDoCancelledContextSkipsPrimary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	out := Do(ctx, "test", func(context.Context) (int, error) {
		called = true
		return 1, nil
	}, func() int { return 2 })

	assert.False(t, called)
	assert.True(t, out.Degraded)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Equal(t, 2, out.Value)
}
