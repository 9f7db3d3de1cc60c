package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestUnitFromLinear(t *testing.T) {
	assert.Equal(t, UnitFeet, UnitFromLinear("foot", 0.3048))
	assert.Equal(t, UnitFeet, UnitFromLinear("US survey foot", 0.30480060960121924))
	assert.Equal(t, UnitFeet, UnitFromLinear("Foot_US", 0))
	assert.Equal(t, UnitMeters, UnitFromLinear("metre", 1))
	assert.Equal(t, UnitDegrees, UnitFromLinear("degree", 0))
	assert.Equal(t, UnitUnknown, UnitFromLinear("link", 0.201168))
	assert.Equal(t, "feet", UnitFeet.String())
}

func TestCRSEqual(t *testing.T) {
	a := CRS{Srid: 2227, Wkt: "A"}
	assert.True(t, a.Equal(CRS{Srid: 2227, Wkt: "B"}))
	assert.False(t, a.Equal(CRS{Srid: 2228}))
	assert.False(t, a.Equal(CRS{Wkt: "A"}))
	assert.True(t, CRS{Wkt: "LOCAL_CS[\"x\"]"}.Equal(CRS{Wkt: " LOCAL_CS[\"x\"]\n"}))
	assert.Equal(t, "EPSG:2227", a.AuthID())
}

func TestExplode(t *testing.T) {
	mp := geom.NewMultiPointFlat(geom.XY, []float64{1, 2, 3, 4})
	parts, err := Explode(mp)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, []float64{3, 4}, parts[1].FlatCoords())

	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(mp, geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1})))
	parts, err = Explode(gc)
	require.NoError(t, err)
	assert.Len(t, parts, 3)
}

func TestExplodeLayerKeepsAttributes(t *testing.T) {
	l := &Layer{
		Name:     "poles",
		GeomType: GeomMultiPoint,
		Features: []*Feature{
			NewFeature(7, geom.NewMultiPointFlat(geom.XY, []float64{1, 2, 3, 4}), map[string]any{"GUID": "a"}),
			NewFeature(8, geom.NewMultiPointFlat(geom.XY, []float64{5, 6}), map[string]any{"GUID": "b"}),
		},
	}
	out, err := ExplodeLayer(l)
	require.NoError(t, err)
	assert.Equal(t, "poles", out.Name)
	assert.Equal(t, GeomPoint, out.GeomType)
	require.Equal(t, 3, out.FeatureCount())
	assert.Equal(t, "a", out.Features[1].Attributes["GUID"])
	assert.Equal(t, "b", out.Features[2].Attributes["GUID"])
	assert.Equal(t, int64(3), out.Features[2].FID)
	// 不共享源属性
	out.Features[0].Attributes["GUID"] = "z"
	assert.Equal(t, "a", l.Features[0].Attributes["GUID"])
}

func TestExtractVerticesLayer(t *testing.T) {
	l := &Layer{
		Name:     "fence",
		GeomType: GeomLineString,
		Fields:   []Field{{Name: "GUID"}},
		Features: []*Feature{
			NewFeature(1, geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 0, 10, 5}), map[string]any{"GUID": "f"}),
		},
	}
	out := ExtractVerticesLayer(l)
	assert.Equal(t, GeomPoint, out.GeomType)
	require.Equal(t, 3, out.FeatureCount())
	assert.Equal(t, []float64{10, 5}, out.Features[2].Geometry.FlatCoords())
	assert.Equal(t, 2, out.Features[2].Attributes[FieldVertexIndex])
	assert.Equal(t, "f", out.Features[2].Attributes["GUID"])
	assert.GreaterOrEqual(t, out.FieldIndex(FieldVertexIndex), 0)
	assert.Len(t, l.Fields, 1)
}

func square(x0, y0, x1, y1 float64) []float64 {
	return []float64{x0, y0, x1, y0, x1, y1, x0, y1, x0, y0}
}

func TestShortestLine(t *testing.T) {
	pt := func(x, y float64) geom.T { return geom.NewPointFlat(geom.XY, []float64{x, y}) }

	line, d, err := ShortestLine(pt(0, 0), pt(3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 5, d, 1e-12)
	assert.Equal(t, []float64{0, 0, 3, 4}, line.FlatCoords())

	line, d, err = ShortestLine(pt(5, 5), geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 5, d, 1e-12)
	assert.Equal(t, []float64{5, 5, 5, 0}, line.FlatCoords())

	// 参数互换，连接线反向
	line, _, err = ShortestLine(geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 0}), pt(5, 5))
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 0, 5, 5}, line.FlatCoords())

	_, d, err = ShortestLine(
		geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 10}),
		geom.NewLineStringFlat(geom.XY, []float64{0, 10, 10, 0}),
	)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)

	_, d, err = ShortestLine(
		geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 0}),
		geom.NewLineStringFlat(geom.XY, []float64{0, 3, 10, 8}),
	)
	require.NoError(t, err)
	assert.InDelta(t, 3, d, 1e-12)
}

func TestShortestLinePolygon(t *testing.T) {
	shell := geom.NewPolygonFlat(geom.XY, square(0, 0, 10, 10), []int{10})
	inside := geom.NewPointFlat(geom.XY, []float64{5, 5})
	d, err := Distance(shell, inside)
	require.NoError(t, err)
	assert.Zero(t, d)

	holed := geom.NewPolygonFlat(geom.XY, append(square(0, 0, 10, 10), square(4, 4, 6, 6)...), []int{10, 20})
	line, d, err := ShortestLine(inside, holed)
	require.NoError(t, err)
	assert.InDelta(t, 1, d, 1e-12)
	assert.Equal(t, []float64{5, 5}, line.FlatCoords()[:2])

	outside := geom.NewPointFlat(geom.XY, []float64{13, 14})
	d, err = Distance(outside, shell)
	require.NoError(t, err)
	assert.InDelta(t, 5, d, 1e-12)
}

func TestShortestLineEmpty(t *testing.T) {
	_, _, err := ShortestLine(geom.NewMultiPoint(geom.XY), geom.NewPointFlat(geom.XY, []float64{0, 0}))
	assert.ErrorIs(t, err, ErrEmptyGeometry)
}

func TestMemorySinkEdits(t *testing.T) {
	s := NewMemorySink(Schema{Fields: []Field{{Name: "event_type"}}})
	for i := 0; i < 4; i++ {
		require.NoError(t, s.AddFeature(NewFeature(0, nil, map[string]any{"event_type": "Unitary"})))
	}
	fs, err := s.Features()
	require.NoError(t, err)
	require.Len(t, fs, 4)
	assert.Equal(t, int64(4), fs[3].FID)

	n, err := s.DeleteFeatures([]int64{2, 3, 99})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, s.ChangeAttributeValue(4, "event_type", "End"))
	assert.ErrorIs(t, s.ChangeAttributeValue(2, "event_type", "x"), ErrFeatureNotFound)
	assert.ErrorIs(t, s.ChangeAttributeValue(1, "nope", "x"), ErrFieldNotInSchema)
	require.NoError(t, s.CommitChanges())

	fs, _ = s.Features()
	require.Len(t, fs, 2)
	assert.Equal(t, "End", fs[1].Attributes["event_type"])
	assert.Equal(t, 2, s.FeatureCount())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.AddFeature(NewFeature(0, nil, nil)), ErrSinkClosed)
	assert.Len(t, s.Layer("out").Features, 2)
}

func TestExtractVertices(t *testing.T) {
	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(
		geom.NewPointFlat(geom.XY, []float64{9, 9}),
		geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1, 2, 0}),
	))
	pts := ExtractVertices(gc)
	require.Len(t, pts, 4)
	assert.Equal(t, []float64{9, 9}, pts[0].FlatCoords())
	assert.Equal(t, []float64{2, 0}, pts[3].FlatCoords())
	assert.Empty(t, ExtractVertices(nil))
}
