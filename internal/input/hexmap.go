package input

import (
	"math"

	"github.com/edgesp/spsolve/internal/model"
)

// hexSize is the pixel size of one hex cell; point.py's DEFAULT_HEX_SIZE.
const hexSize = 1.0

// hexPoint is an axial hex-grid coordinate (q, r), per Red Blob Games'
// axial coordinate system.
type hexPoint struct {
	q, r int
}

func (p hexPoint) toPixel() model.Point2D {
	return model.Point2D{
		X: hexSize * (1.73*float64(p.q) + 0.86*float64(p.r)),
		Y: hexSize * (1.5 * float64(p.r)),
	}
}

// distance returns the hex-grid (cube) distance between two axial points.
func (p hexPoint) distance(o hexPoint) float64 {
	x1, y1, z1 := float64(p.q), float64(-p.q-p.r), float64(p.r)
	x2, y2, z2 := float64(o.q), float64(-o.q-o.r), float64(o.r)
	return (math.Abs(x1-x2) + math.Abs(y1-y2) + math.Abs(z1-z2)) / 2.0
}

func (p hexPoint) isNeighbor(o hexPoint) bool {
	return p.distance(o) == 1.0
}

// pixelToHex rounds an arbitrary pixel-space point to the nearest hex cell,
// mirroring Point2D.to_hex in point.py.
func pixelToHex(p model.Point2D) hexPoint {
	q := (0.58*p.X - 0.34*p.Y) / hexSize
	r := 0.67 * p.Y / hexSize
	return roundToHex(q, r)
}

func roundToHex(q, r float64) hexPoint {
	x, z, y := q, r, -q-r
	rx, ry, rz := math.Round(x), math.Round(y), math.Round(z)

	xDiff, yDiff, zDiff := math.Abs(rx-x), math.Abs(ry-y), math.Abs(rz-z)
	switch {
	case xDiff > yDiff && xDiff > zDiff:
		rx = -ry - rz
	case yDiff > zDiff:
		ry = -rx - rz
	default:
		rz = -rx - ry
	}
	return hexPoint{q: int(rx), r: int(rz)}
}

// genHexMap returns n axial hex points taken from a hexagon of radius
// ceil(size) around the origin, scanned column by column (q ascending,
// then r ascending) and cut off once n points are collected.
func genHexMap(n int) []hexPoint {
	deltaSqrt := math.Sqrt(9 + 12*float64(n-1))
	size := 0.0
	if deltaSqrt > 3 {
		size = (deltaSqrt - 3) / 6.0
	}
	radius := int(math.Ceil(size))

	var points []hexPoint
	for q := -radius; q <= radius; q++ {
		rLo, rHi := -radius, radius
		if -radius-q > rLo {
			rLo = -radius - q
		}
		if radius-q < rHi {
			rHi = radius - q
		}
		for r := rLo; r <= rHi; r++ {
			if len(points) >= n {
				return points
			}
			points = append(points, hexPoint{q: q, r: r})
		}
	}
	return points
}

// genRectMap arranges n points into a roughly square grid (floor(sqrt(n))
// rows/columns), offsetting every other row by half a column so the result
// still forms a valid hex lattice.
func genRectMap(n int) []hexPoint {
	rows := int(math.Floor(math.Sqrt(float64(n))))
	if rows < 1 {
		rows = 1
	}
	cols := rows

	var points []hexPoint
	for row := 0; row < rows && len(points) < n; row++ {
		for col := 0; col < cols && len(points) < n; col++ {
			q := col - int(math.Floor(float64(row)/2.0))
			points = append(points, hexPoint{q: q, r: row})
		}
	}
	for len(points) < n {
		points = append(points, hexPoint{q: len(points), r: rows})
	}
	return points
}

// boundBox is an axis-aligned pixel-space rectangle that a lattice of n
// points roughly spans, used to scatter user points around it.
type boundBox struct {
	minX, minY, maxX, maxY float64
}

func hexBoundBox(n int) boundBox {
	deltaSqrt := math.Sqrt(9 + 12*float64(n-1))
	dist := 0.0
	if deltaSqrt > 3 {
		dist = (deltaSqrt - 3) / 6.0
	}
	d := math.Ceil(dist)
	w := 1.73*d*hexSize + 0.86*hexSize
	h := 1.5*d*hexSize + hexSize
	return boundBox{minX: -w, minY: -h, maxX: w, maxY: h}
}

func rectBoundBox(n int) boundBox {
	rows := int(math.Floor(math.Sqrt(float64(n))))
	if rows < 1 {
		rows = 1
	}
	cols := rows
	w := 1.73 * hexSize * float64(cols)
	h := float64(rows-1)*(1.5*hexSize) + hexSize
	return boundBox{minX: -0.86 * hexSize, minY: -hexSize, maxX: w, maxY: h}
}
