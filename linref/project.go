package linref

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/orientation"
)

// 事件位于中线的哪一侧
type Side int

const (
	SideLeft  Side = -1
	SideOn    Side = 0
	SideRight Side = 1
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "Left"
	case SideRight:
		return "Right"
	}
	return "Unknown / On Line"
}

// 不按垂距过滤
const EpsilonUnfiltered = -1.0

const nearZero = 4 * 2.220446049250313e-16

func near(a, b float64) bool {
	return math.Abs(a-b) <= nearZero
}

// 按方向ab的定向判断p：逆时针+1，顺时针-1，共线0
func sideOf(p, a, b geom.Coord) Side {
	switch xy.OrientationIndex(a, b, p) {
	case orientation.CounterClockwise:
		return SideRight
	case orientation.Clockwise:
		return SideLeft
	}
	return SideOn
}

// p到线段ab的距离平方及最近点
func sqrDistToSegment(p, a, b geom.Coord) (d float64, on geom.Coord) {
	dx, dy := b.X()-a.X(), b.Y()-a.Y()
	var x, y float64
	switch l2 := dx*dx + dy*dy; {
	case l2 == 0:
		x, y = a.X(), a.Y()
	default:
		t := ((p.X()-a.X())*dx + (p.Y()-a.Y())*dy) / l2
		switch {
		case t <= 0:
			x, y = a.X(), a.Y()
		case t >= 1:
			x, y = b.X(), b.Y()
		default:
			x, y = a.X()+t*dx, a.Y()+t*dy
		}
	}
	d = (x-p.X())*(x-p.X()) + (y-p.Y())*(y-p.Y())
	if near(d, 0) {
		return 0, geom.Coord{p.X(), p.Y()}
	}
	return d, geom.Coord{x, y}
}

// 最近线段：返回距离平方、投影点、其后顶点序号及侧向。距离相同时取首段，侧向不一致时按两段转向判断
func ClosestSegment(vertices []geom.Coord, p geom.Coord) (sqrDist float64, onLine geom.Coord, vertexAfter int, side Side) {
	sqrDist = math.MaxFloat64
	var (
		sideDist = math.MaxFloat64
		prevSide Side
	)
	for i := 1; i < len(vertices); i++ {
		prev, curr := vertices[i-1], vertices[i]
		d, on := sqrDistToSegment(p, prev, curr)
		if d < sqrDist {
			sqrDist, onLine, vertexAfter = d, on, i
		}
		if !near(d, sqrDist) {
			continue
		}
		s := sideOf(p, prev, curr)
		if s == SideOn {
			continue
		}
		if near(d, sideDist) && s != prevSide && prevSide != SideOn {
			side = -sideOf(curr, vertices[i-2], prev)
		} else if !(near(d, sideDist) && s == prevSide) {
			side = s
		}
		prevSide = side
		sideDist = d
	}
	return
}

type Projection struct {
	DistanceAway   float64
	Point          geom.Coord
	VertexAfter    int
	Side           Side
	DistanceOnLine float64
}

// 将p定位到vertices构成的线上
func Project(vertices []geom.Coord, p geom.Coord) (pr Projection) {
	sqrDist, on, after, side := ClosestSegment(vertices, p)
	pr = Projection{
		DistanceAway:   math.Sqrt(sqrDist),
		Point:          on,
		VertexAfter:    after,
		Side:           side,
		DistanceOnLine: MeasureAlongLine(vertices, after-1, on),
	}
	return
}

func WithinEpsilon(distanceAway, epsilon float64) bool {
	return epsilon == EpsilonUnfiltered || distanceAway <= epsilon
}
