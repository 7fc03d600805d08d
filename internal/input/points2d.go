package input

import (
	"math"
	"math/rand"

	"github.com/edgesp/spsolve/internal/model"
)

const defaultNbBlobs = 5

// genPointsUniform scatters n points uniformly at random within box.
func genPointsUniform(n int, box boundBox, rng *rand.Rand) []model.Point2D {
	points := make([]model.Point2D, n)
	for i := range points {
		points[i] = model.Point2D{
			X: box.minX + rng.Float64()*(box.maxX-box.minX),
			Y: box.minY + rng.Float64()*(box.maxY-box.minY),
		}
	}
	return points
}

// genPointsBlob scatters n points around 1..defaultNbBlobs Gaussian
// cluster centers placed randomly within box, mirroring sklearn's
// make_blobs without the dependency.
func genPointsBlob(n int, box boundBox, rng *rand.Rand) []model.Point2D {
	nbCenters := 1 + rng.Intn(defaultNbBlobs)
	centers := make([]model.Point2D, nbCenters)
	stddevs := make([]float64, nbCenters)
	for i := range centers {
		centers[i] = model.Point2D{
			X: box.minX + rng.Float64()*(box.maxX-box.minX),
			Y: box.minY + rng.Float64()*(box.maxY-box.minY),
		}
		stddevs[i] = hexSize * (0.1 + rng.Float64()*0.9)
	}

	points := make([]model.Point2D, n)
	for i := range points {
		c := centers[rng.Intn(nbCenters)]
		std := stddevs[rng.Intn(nbCenters)]
		points[i] = model.Point2D{
			X: c.X + rng.NormFloat64()*std,
			Y: c.Y + rng.NormFloat64()*std,
		}
	}
	return boundPoints(points, box)
}

// genPointsCircle scatters n points along a noisy circle, mirroring
// sklearn's make_circles without the dependency.
func genPointsCircle(n int, box boundBox, rng *rand.Rand) []model.Point2D {
	centerX := box.minX + rng.Float64()*(box.maxX/2.0-box.minX)
	centerY := box.minY + rng.Float64()*(box.maxY/2.0-box.minY)
	noise := rng.Float64() * 0.05
	width, height := box.maxX-box.minX, box.maxY-box.minY
	scaleX := width * (0.1 + rng.Float64()*0.9)
	scaleY := height * (0.1 + rng.Float64()*0.9)
	factor := rng.Float64()

	points := make([]model.Point2D, n)
	for i := range points {
		r := 1.0
		if i%2 == 1 {
			r = factor
		}
		theta := rng.Float64() * 2 * math.Pi
		x := r*math.Cos(theta) + rng.NormFloat64()*noise
		y := r*math.Sin(theta) + rng.NormFloat64()*noise
		points[i] = model.Point2D{
			X: (x+1)/2.0*scaleX + centerX,
			Y: (y+1)/2.0*scaleY + centerY,
		}
	}
	return boundPoints(points, box)
}

// genPointsMoon scatters n points along two interleaving noisy half-moons,
// mirroring sklearn's make_moons without the dependency.
func genPointsMoon(n int, box boundBox, rng *rand.Rand) []model.Point2D {
	centerX := box.minX + rng.Float64()*(box.maxX/2.0-box.minX)
	centerY := box.minY + rng.Float64()*(box.maxY/2.0-box.minY)
	noise := rng.Float64() * 0.05
	width := box.maxX - box.minX
	scale := width * (0.1 + rng.Float64()*0.9)

	points := make([]model.Point2D, n)
	for i := range points {
		theta := rng.Float64() * math.Pi
		var x, y float64
		if i%2 == 0 {
			x = math.Cos(theta)
			y = math.Sin(theta)
		} else {
			x = 1 - math.Cos(theta)
			y = 1 - math.Sin(theta) - 0.5
		}
		x += rng.NormFloat64() * noise
		y += rng.NormFloat64() * noise
		points[i] = model.Point2D{
			X: (x+1)/3.0*scale + centerX,
			Y: (y+0.5)/1.5*scale + centerY,
		}
	}
	return boundPoints(points, box)
}

func boundPoints(points []model.Point2D, box boundBox) []model.Point2D {
	out := make([]model.Point2D, len(points))
	for i, p := range points {
		out[i] = model.Point2D{
			X: math.Max(box.minX, math.Min(box.maxX, p.X)),
			Y: math.Max(box.minY, math.Min(box.maxY, p.Y)),
		}
	}
	return out
}

func genPoints(distribution string, n int, box boundBox, rng *rand.Rand) []model.Point2D {
	switch distribution {
	case "blob":
		return genPointsBlob(n, box, rng)
	case "circle":
		return genPointsCircle(n, box, rng)
	case "moon":
		return genPointsMoon(n, box, rng)
	default:
		return genPointsUniform(n, box, rng)
	}
}
