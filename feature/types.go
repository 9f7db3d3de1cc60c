package feature

import (
	"github.com/twpayne/go-geom"
)

// 图层或输出声明的几何类型
type GeomType int

const (
	GeomUnknown GeomType = iota
	GeomPoint
	GeomLineString
	GeomPolygon
	GeomMultiPoint
	GeomMultiLineString
	GeomMultiPolygon
	GeomCollection
)

var geomTypeNames = [...]string{"Unknown", "Point", "LineString", "Polygon", "MultiPoint", "MultiLineString", "MultiPolygon", "GeometryCollection"}

func (t GeomType) String() string {
	if t < 0 || int(t) >= len(geomTypeNames) {
		return geomTypeNames[0]
	}
	return geomTypeNames[t]
}

func (t GeomType) IsMulti() bool {
	return t >= GeomMultiPoint
}

// 多部件类型对应的单部件类型
func (t GeomType) Single() GeomType {
	switch t {
	case GeomMultiPoint:
		return GeomPoint
	case GeomMultiLineString:
		return GeomLineString
	case GeomMultiPolygon:
		return GeomPolygon
	}
	return t
}

func GeomTypeOf(g geom.T) GeomType {
	switch g.(type) {
	case *geom.Point:
		return GeomPoint
	case *geom.LineString, *geom.LinearRing:
		return GeomLineString
	case *geom.Polygon:
		return GeomPolygon
	case *geom.MultiPoint:
		return GeomMultiPoint
	case *geom.MultiLineString:
		return GeomMultiLineString
	case *geom.MultiPolygon:
		return GeomMultiPolygon
	case *geom.GeometryCollection:
		return GeomCollection
	}
	return GeomUnknown
}

type FieldType int

const (
	FieldString FieldType = iota
	FieldInteger
	FieldInteger64
	FieldReal
)

type Field struct {
	Name  string
	Type  FieldType
	Width int
}

// 创建输出时使用的结构
type Schema struct {
	Fields   []Field
	GeomType GeomType
	CRS      CRS
}

func (s Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

type Feature struct {
	FID        int64
	Geometry   geom.T
	Attributes map[string]any
}

func NewFeature(fid int64, g geom.T, attrs map[string]any) *Feature {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &Feature{FID: fid, Geometry: g, Attributes: attrs}
}

// 字段值及其是否非空
func (f *Feature) Attribute(name string) (v any, ok bool) {
	v, ok = f.Attributes[name]
	if v == nil {
		ok = false
	}
	return
}

func (f *Feature) CloneWithGeometry(fid int64, g geom.T) *Feature {
	attrs := make(map[string]any, len(f.Attributes))
	for k, v := range f.Attributes {
		attrs[k] = v
	}
	return &Feature{FID: fid, Geometry: g, Attributes: attrs}
}

// 完全载入内存的矢量图层
type Layer struct {
	Name     string
	CRS      CRS
	GeomType GeomType
	Fields   []Field
	Features []*Feature
}

func (l *Layer) FeatureCount() int {
	return len(l.Features)
}

func (l *Layer) FieldIndex(name string) int {
	for i, f := range l.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (l *Layer) Field(name string) (f Field, ok bool) {
	if i := l.FieldIndex(name); i >= 0 {
		f, ok = l.Fields[i], true
	}
	return
}

// 与l共享名称、坐标系和字段的新图层
func (l *Layer) WithFeatures(gt GeomType, fs []*Feature) *Layer {
	return &Layer{
		Name:     l.Name,
		CRS:      l.CRS,
		GeomType: gt,
		Fields:   l.Fields,
		Features: fs,
	}
}
