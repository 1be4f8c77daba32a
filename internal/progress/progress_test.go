package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFanoutPublishesToAllSinks(t *testing.T) {
	t.Parallel()

	var first, second []Update
	fan := NewFanout(
		Func(func(_ context.Context, u Update) { first = append(first, u) }),
		nil,
		Func(func(_ context.Context, u Update) { second = append(second, u) }),
	)

	fan.Publish(context.Background(), Update{Category: "apartments", Completed: 1, Total: 2, Fraction: 0.5})
	fan.Publish(context.Background(), Update{Category: "apartments", Completed: 2, Total: 2, Fraction: 1})

	require.Len(t, first, 2)
	require.Equal(t, first, second)
	require.Equal(t, 1.0, first[1].Fraction)
}

func TestFanoutWithoutSinksIsSafe(t *testing.T) {
	t.Parallel()

	fan := NewFanout()
	fan.Publish(context.Background(), Update{Category: "land", Completed: 1, Total: 1, Fraction: 1})
}
