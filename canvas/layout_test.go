package canvas

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func TestRadialPositions_DistanceAndSpacing(t *testing.T) {
	for count := 1; count <= 9; count++ {
		positions := RadialPositions(10, -20, count, 200, -math.Pi/2)
		require.Len(t, positions, count)

		step := 2 * math.Pi / float64(count)
		for i, p := range positions {
			dx, dy := p.X-10, p.Y+20
			assert.InDelta(t, 200, math.Hypot(dx, dy), epsilon, "count=%d i=%d", count, i)

			want := -math.Pi/2 + float64(i)*step
			got := math.Atan2(dy, dx)
			diff := math.Remainder(got-want, 2*math.Pi)
			assert.InDelta(t, 0, diff, 1e-9, "count=%d i=%d", count, i)
		}
	}
}

func TestRadialPositions_SixAroundOrigin(t *testing.T) {
	positions := RadialPositions(0, 0, 6, DefaultRadius, -math.Pi/2)
	require.Len(t, positions, 6)

	assert.InDelta(t, 0, positions[0].X, epsilon)
	assert.InDelta(t, -200, positions[0].Y, epsilon)
	assert.InDelta(t, 200*math.Cos(-math.Pi/2+math.Pi/3), positions[1].X, epsilon)
	assert.InDelta(t, 200*math.Sin(-math.Pi/2+math.Pi/3), positions[1].Y, epsilon)
	assert.InDelta(t, 0, positions[3].X, epsilon)
	assert.InDelta(t, 200, positions[3].Y, epsilon)
}

func TestRadialPositions_Empty(t *testing.T) {
	assert.Empty(t, RadialPositions(0, 0, 0, 200, 0))
	assert.Empty(t, RadialPositions(0, 0, -3, 200, 0))
}

func TestStartAngle(t *testing.T) {
	assert.Equal(t, -math.Pi/2, StartAngle(false, nil))

	rng := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		a := StartAngle(true, rng)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.Less(t, a, 2*math.Pi)
	}
}
