package feature

import (
	"github.com/twpayne/go-geom"
)

const FieldVertexIndex = "vertex_index"

// 拆分多部件几何，集合递归展开，单部件原样返回
func Explode(g geom.T) (parts []geom.T, err error) {
	switch v := g.(type) {
	case *geom.Point, *geom.LineString, *geom.Polygon:
		parts = []geom.T{g}
	case *geom.MultiPoint:
		for i := 0; i < v.NumPoints(); i++ {
			parts = append(parts, v.Point(i))
		}
	case *geom.MultiLineString:
		for i := 0; i < v.NumLineStrings(); i++ {
			parts = append(parts, v.LineString(i))
		}
	case *geom.MultiPolygon:
		for i := 0; i < v.NumPolygons(); i++ {
			parts = append(parts, v.Polygon(i))
		}
	case *geom.GeometryCollection:
		var sub []geom.T
		for i := 0; i < v.NumGeoms(); i++ {
			if sub, err = Explode(v.Geom(i)); err != nil {
				return
			}
			parts = append(parts, sub...)
		}
	default:
		err = ErrUnsupportedGeom
	}
	return
}

// 按存储顺序返回全部顶点，多边形环保留闭合点
func Vertices(g geom.T) []geom.Coord {
	if g == nil {
		return nil
	}
	if gc, ok := g.(*geom.GeometryCollection); ok {
		var ret []geom.Coord
		for i := 0; i < gc.NumGeoms(); i++ {
			ret = append(ret, Vertices(gc.Geom(i))...)
		}
		return ret
	}
	flat := g.FlatCoords()
	stride := g.Stride()
	if stride == 0 {
		return nil
	}
	ret := make([]geom.Coord, 0, len(flat)/stride)
	for i := 0; i+stride <= len(flat); i += stride {
		ret = append(ret, geom.Coord{flat[i], flat[i+1]})
	}
	return ret
}

func ExtractVertices(g geom.T) []*geom.Point {
	vs := Vertices(g)
	ret := make([]*geom.Point, len(vs))
	for i, c := range vs {
		ret[i] = NewPoint(c)
	}
	return ret
}

func NewPoint(c geom.Coord) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.X(), c.Y()})
}

// 多部件图层转单部件，各部件继承源要素属性
func ExplodeLayer(l *Layer) (out *Layer, err error) {
	var (
		fs    = make([]*Feature, 0, len(l.Features))
		parts []geom.T
		fid   int64
	)
	for _, f := range l.Features {
		if f.Geometry == nil {
			continue
		}
		if parts, err = Explode(f.Geometry); err != nil {
			return
		}
		for _, p := range parts {
			fid++
			fs = append(fs, f.CloneWithGeometry(fid, p))
		}
	}
	out = l.WithFeatures(l.GeomType.Single(), fs)
	return
}

// 每个顶点转为点要素，附带源属性与顶点序号
func ExtractVerticesLayer(l *Layer) *Layer {
	var (
		fs  = make([]*Feature, 0, len(l.Features))
		fid int64
	)
	for _, f := range l.Features {
		for i, c := range Vertices(f.Geometry) {
			fid++
			nf := f.CloneWithGeometry(fid, NewPoint(c))
			nf.Attributes[FieldVertexIndex] = i
			fs = append(fs, nf)
		}
	}
	out := l.WithFeatures(GeomPoint, fs)
	if l.FieldIndex(FieldVertexIndex) < 0 {
		out.Fields = append(append([]Field(nil), l.Fields...), Field{Name: FieldVertexIndex, Type: FieldInteger})
	}
	return out
}

// 返回对每个XY坐标应用t后的副本
func TransformCoords(g geom.T, t func(geom.Coord) geom.Coord) geom.T {
	var c geom.T
	switch v := g.(type) {
	case *geom.Point:
		c = v.Clone()
	case *geom.LineString:
		c = v.Clone()
	case *geom.Polygon:
		c = v.Clone()
	case *geom.MultiPoint:
		c = v.Clone()
	case *geom.MultiLineString:
		c = v.Clone()
	case *geom.MultiPolygon:
		c = v.Clone()
	case *geom.GeometryCollection:
		gc := geom.NewGeometryCollection()
		for i := 0; i < v.NumGeoms(); i++ {
			_ = gc.Push(TransformCoords(v.Geom(i), t))
		}
		return gc
	default:
		return g
	}
	flat, stride := c.FlatCoords(), c.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		out := t(geom.Coord{flat[i], flat[i+1]})
		flat[i], flat[i+1] = out.X(), out.Y()
	}
	return c
}
