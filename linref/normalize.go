package linref

import (
	"fmt"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/process"

	"go.uber.org/zap"
)

func shapeOf(l *feature.Layer) (multi, points bool) {
	multi = l.GeomType.IsMulti()
	points = l.GeomType.Single() == feature.GeomPoint
	if l.GeomType != feature.GeomUnknown {
		return
	}
	points = true
	for _, f := range l.Features {
		gt := feature.GeomTypeOf(f.Geometry)
		multi = multi || gt.IsMulti()
		points = points && gt.Single() == feature.GeomPoint
	}
	return
}

func checkEventCRS(l *feature.Layer, crs feature.CRS) error {
	if l.CRS.Equal(crs) {
		return nil
	}
	return fmt.Errorf(ErrCrsMismatchTemplate, ErrCrsMismatch, l.Name, l.CRS.AuthID(), crs.AuthID())
}

// 事件图层统一为单部件点图层：多部件拆分，线面取顶点，空图层跳过；total为点总数
func NormalizeEventLayers(layers []*feature.Layer, crs feature.CRS, fb process.Feedback) (out []*feature.Layer, total int, err error) {
	for _, l := range layers {
		if l.FeatureCount() < 1 {
			fb.PushInfo("Layer has no features, skipping", zap.String("layer", l.Name))
			continue
		}
		if err = checkEventCRS(l, crs); err != nil {
			return
		}
		multi, points := shapeOf(l)
		n := l
		if multi {
			fb.PushInfo("Exploding multipart event layer", zap.String("layer", l.Name))
			if n, err = feature.ExplodeLayer(n); err != nil {
				err = fmt.Errorf("explode %s: %w", l.Name, err)
				return
			}
		}
		if !points {
			fb.PushInfo("Extracting vertices of event layer", zap.String("layer", l.Name))
			n = feature.ExtractVerticesLayer(n)
		}
		total += n.FeatureCount()
		out = append(out, n)
	}
	return
}
