package linref

import (
	"fmt"

	"github.com/wgdzlh/gdalref/feature"

	"github.com/twpayne/go-geom"
)

type Alignment struct {
	Name     string
	CRS      feature.CRS
	Vertices []geom.Coord
}

// 校验图层仅含一条投影坐标系（英尺）下的单部件线，并取其顶点
func NewAlignment(l *feature.Layer) (a *Alignment, err error) {
	if n := l.FeatureCount(); n != 1 {
		err = fmt.Errorf(ErrAlignmentCountTemplate, ErrAlignmentCount, n)
		return
	}
	g := l.Features[0].Geometry
	if l.GeomType.IsMulti() || feature.GeomTypeOf(g).IsMulti() {
		err = ErrAlignmentMultipart
		return
	}
	if l.CRS.Geographic {
		err = ErrAlignmentGeographic
		return
	}
	if l.CRS.Units != feature.UnitFeet {
		err = ErrAlignmentUnits
		return
	}
	if _, ok := g.(*geom.LineString); !ok {
		err = ErrAlignmentNotLine
		return
	}
	vs := feature.Vertices(g)
	if len(vs) < 2 {
		err = ErrAlignmentVertices
		return
	}
	a = &Alignment{Name: l.Name, CRS: l.CRS, Vertices: vs}
	return
}

func (a *Alignment) Project(p geom.Coord) Projection {
	return Project(a.Vertices, p)
}

func (a *Alignment) Length() float64 {
	return MeasureAlongLine(a.Vertices, len(a.Vertices)-1, a.Vertices[len(a.Vertices)-1])
}
