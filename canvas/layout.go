package canvas

import (
	"math"
	"math/rand/v2"
)

// DefaultRadius is the distance between a parent and its generated children.
const DefaultRadius = 200.0

// RadialPositions spaces count points evenly on a circle of the given radius around
// (centerX, centerY), starting at startAngle radians. count <= 0 yields no points.
func RadialPositions(centerX, centerY float64, count int, radius, startAngle float64) []Position {
	if count <= 0 {
		return []Position{}
	}

	positions := make([]Position, count)
	angleStep := 2 * math.Pi / float64(count)
	for i := range count {
		angle := startAngle + float64(i)*angleStep
		positions[i] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return positions
}

// StartAngle picks the angle of the first child. A node's first batch starts straight
// up; later batches start at a random angle so they do not land on top of earlier ones.
func StartAngle(hasChildren bool, rng *rand.Rand) float64 {
	if !hasChildren {
		return -math.Pi / 2
	}
	if rng == nil {
		return rand.Float64() * 2 * math.Pi
	}
	return rng.Float64() * 2 * math.Pi
}
