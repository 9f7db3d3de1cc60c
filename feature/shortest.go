package feature

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/lineintersector"
)

// 拆解为点与线段的几何
type shape struct {
	points   []geom.Coord
	segments [][2]geom.Coord
	polygons []*geom.Polygon
}

func (s *shape) empty() bool {
	return len(s.points) == 0 && len(s.segments) == 0
}

func (s *shape) coords() []geom.Coord {
	ret := make([]geom.Coord, 0, len(s.points)+2*len(s.segments))
	ret = append(ret, s.points...)
	for _, seg := range s.segments {
		ret = append(ret, seg[0], seg[1])
	}
	return ret
}

func (s *shape) addChain(cs []geom.Coord) {
	switch len(cs) {
	case 0:
	case 1:
		s.points = append(s.points, cs[0])
	default:
		for i := 1; i < len(cs); i++ {
			s.segments = append(s.segments, [2]geom.Coord{cs[i-1], cs[i]})
		}
	}
}

func decompose(g geom.T) (s shape, err error) {
	if g == nil {
		return
	}
	parts, err := Explode(g)
	if err != nil {
		return
	}
	for _, p := range parts {
		switch v := p.(type) {
		case *geom.Point:
			s.addChain(Vertices(v))
		case *geom.LineString:
			s.addChain(Vertices(v))
		case *geom.Polygon:
			if v.NumLinearRings() == 0 {
				continue
			}
			for i := 0; i < v.NumLinearRings(); i++ {
				s.addChain(Vertices(v.LinearRing(i)))
			}
			s.polygons = append(s.polygons, v)
		}
	}
	return
}

// p在外环内（含边界）且不在洞内
func covers(poly *geom.Polygon, p geom.Coord) bool {
	layout := poly.Layout()
	if !xy.IsPointInRing(layout, p, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(layout, p, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// p在线段ab上的投影点，截断到端点
//
//	r = AP.AB / |AB|^2, 0 -> A, 1 -> B
func closestPointOnSegment(p, a, b geom.Coord) geom.Coord {
	dx, dy := b.X()-a.X(), b.Y()-a.Y()
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return geom.Coord{a.X(), a.Y()}
	}
	r := ((p.X()-a.X())*dx + (p.Y()-a.Y())*dy) / l2
	switch {
	case r <= 0:
		return geom.Coord{a.X(), a.Y()}
	case r >= 1:
		return geom.Coord{b.X(), b.Y()}
	}
	return geom.Coord{a.X() + r*dx, a.Y() + r*dy}
}

func coordDist(a, b geom.Coord) float64 {
	return math.Hypot(a.X()-b.X(), a.Y()-b.Y())
}

type nearest struct {
	a, b geom.Coord
	dist float64
}

func (n *nearest) update(a, b geom.Coord) bool {
	if d := coordDist(a, b); d < n.dist {
		n.a, n.b, n.dist = a, b, d
	}
	return n.dist == 0
}

var segmentIntersector = &lineintersector.NonRobustLineIntersector{}

func (n *nearest) segments(sa, sb [2]geom.Coord) bool {
	res := lineintersector.LineIntersectsLine(segmentIntersector, sa[0], sa[1], sb[0], sb[1])
	if res.HasIntersection() {
		c := res.Intersection()[0]
		return n.update(c, c)
	}
	n.update(sa[0], closestPointOnSegment(sa[0], sb[0], sb[1]))
	n.update(sa[1], closestPointOnSegment(sa[1], sb[0], sb[1]))
	n.update(closestPointOnSegment(sb[0], sa[0], sa[1]), sb[0])
	return n.update(closestPointOnSegment(sb[1], sa[0], sa[1]), sb[1])
}

// 两几何间最短距离及连接线（a上最近点指向b上最近点）；相交或多边形覆盖对方顶点时距离为0
func ShortestLine(a, b geom.T) (line *geom.LineString, dist float64, err error) {
	sa, err := decompose(a)
	if err != nil {
		return
	}
	sb, err := decompose(b)
	if err != nil {
		return
	}
	if sa.empty() || sb.empty() {
		err = ErrEmptyGeometry
		return
	}
	n := nearest{dist: math.Inf(1)}
	n.search(&sa, &sb)
	line = geom.NewLineStringFlat(geom.XY, []float64{n.a.X(), n.a.Y(), n.b.X(), n.b.Y()})
	dist = n.dist
	return
}

func (n *nearest) search(sa, sb *shape) {
	for _, poly := range sa.polygons {
		for _, c := range sb.coords() {
			if covers(poly, c) {
				n.update(c, c)
				return
			}
		}
	}
	for _, poly := range sb.polygons {
		for _, c := range sa.coords() {
			if covers(poly, c) {
				n.update(c, c)
				return
			}
		}
	}
	for _, pa := range sa.points {
		for _, pb := range sb.points {
			if n.update(pa, pb) {
				return
			}
		}
		for _, seg := range sb.segments {
			if n.update(pa, closestPointOnSegment(pa, seg[0], seg[1])) {
				return
			}
		}
	}
	for _, seg := range sa.segments {
		for _, pb := range sb.points {
			if n.update(closestPointOnSegment(pb, seg[0], seg[1]), pb) {
				return
			}
		}
		for _, segB := range sb.segments {
			if n.segments(seg, segB) {
				return
			}
		}
	}
}

func Distance(a, b geom.T) (dist float64, err error) {
	_, dist, err = ShortestLine(a, b)
	return
}
