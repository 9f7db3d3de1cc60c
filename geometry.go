package gdalref

import (
	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/log"

	"github.com/lukeroth/gdal"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
)

var geomTypes = map[feature.GeomType]gdal.GeometryType{
	feature.GeomUnknown:         gdal.GT_Unknown,
	feature.GeomPoint:           gdal.GT_Point,
	feature.GeomLineString:      gdal.GT_LineString,
	feature.GeomPolygon:         gdal.GT_Polygon,
	feature.GeomMultiPoint:      gdal.GT_MultiPoint,
	feature.GeomMultiLineString: gdal.GT_MultiLineString,
	feature.GeomMultiPolygon:    gdal.GT_MultiPolygon,
	feature.GeomCollection:      gdal.GT_GeometryCollection,
}

func toGdalGeomType(t feature.GeomType) gdal.GeometryType {
	if gt, ok := geomTypes[t]; ok {
		return gt
	}
	return gdal.GT_Unknown
}

// OGR类型转内部类型，忽略Z/M修饰
func fromGdalGeomType(t gdal.GeometryType) feature.GeomType {
	flat := (t &^ 0x80000000) % 1000
	for k, v := range geomTypes {
		if v == flat {
			return k
		}
	}
	return feature.GeomUnknown
}

// gdal矢量转go-geom（经由WKB）
func (g *GdalToolbox) toGeom(geo gdal.Geometry) (ret geom.T, err error) {
	if geo == emptyGeometry || geo.IsEmpty() {
		return
	}
	b, err := geo.ToWKB()
	if err != nil {
		log.Error(g.logTag+"gdal geo to wkb failed", zap.Error(err))
		return
	}
	if ret, err = wkb.Unmarshal(b); err != nil {
		log.Error(g.logTag+"parse wkb failed", zap.Error(err))
	}
	return
}

// go-geom转gdal矢量，调用方负责Destroy
func (g *GdalToolbox) fromGeom(t geom.T, ref gdal.SpatialReference) (ret gdal.Geometry, err error) {
	b, err := wkb.Marshal(t, wkb.NDR)
	if err != nil {
		log.Error(g.logTag+"marshal wkb failed", zap.String("geom", geomWkt(t)), zap.Error(err))
		return
	}
	if ret, err = gdal.CreateFromWKB(b, ref, len(b)); err != nil {
		log.Error(g.logTag+"parse wkb failed", zap.String("geom", geomWkt(t)), zap.Error(err))
	}
	return
}

func geomWkt(t geom.T) string {
	s, err := wkt.Marshal(t)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}
