package gdalref

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/log"
	"github.com/wgdzlh/gdalref/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

var (
	emptyLayer = gdal.Layer{}
	emptyRef   = gdal.SpatialReference{}
)

// 按文件后缀选择OGR驱动
func driverFor(path string) (name string, err error) {
	ext := strings.ToLower(filepath.Ext(path))
	name, ok := drivers[ext]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrGdalUnsupportedFile, ext)
	}
	return
}

// 拆分 "path|layer" 形式的数据源
func splitSource(source string) (path, layerName string) {
	path, layerName, _ = strings.Cut(source, LAYER_SEPARATOR)
	path, layerName = strings.TrimSpace(path), strings.TrimSpace(layerName)
	return
}

func fromGdalFieldType(t gdal.FieldType) feature.FieldType {
	switch t {
	case gdal.FT_Integer:
		return feature.FieldInteger
	case gdal.FT_Integer64:
		return feature.FieldInteger64
	case gdal.FT_Real:
		return feature.FieldReal
	}
	return feature.FieldString
}

func toGdalFieldType(t feature.FieldType) gdal.FieldType {
	switch t {
	case feature.FieldInteger:
		return gdal.FT_Integer
	case feature.FieldInteger64:
		return gdal.FT_Integer64
	case feature.FieldReal:
		return gdal.FT_Real
	}
	return gdal.FT_String
}

// 读取图层字段定义；gbk为true时字段名按GBK转码
func layerFields(layer gdal.Layer, gbk bool) (fields []feature.Field) {
	def := layer.Definition()
	n := def.FieldCount()
	fields = make([]feature.Field, n)
	for i := 0; i < n; i++ {
		fd := def.FieldDefinition(i)
		name := fd.Name()
		if gbk {
			name = utils.ToUtf8(name)
		}
		fields[i] = feature.Field{Name: name, Type: fromGdalFieldType(fd.Type()), Width: fd.Width()}
	}
	return
}

// 将OGR要素转为内存要素，字段按下标对应fields
func (g *GdalToolbox) readFeature(f *gdal.Feature, fields []feature.Field, gbk bool) (ret *feature.Feature, err error) {
	gm, err := g.toGeom(f.Geometry())
	if err != nil {
		return
	}
	attrs := make(map[string]any, len(fields))
	for i, fd := range fields {
		if !f.IsFieldSet(i) {
			attrs[fd.Name] = nil
			continue
		}
		switch fd.Type {
		case feature.FieldInteger:
			attrs[fd.Name] = f.FieldAsInteger(i)
		case feature.FieldInteger64:
			attrs[fd.Name] = f.FieldAsInteger64(i)
		case feature.FieldReal:
			attrs[fd.Name] = f.FieldAsFloat64(i)
		default:
			s := f.FieldAsString(i)
			if gbk {
				s = utils.ToUtf8(s)
			}
			attrs[fd.Name] = s
		}
	}
	ret = feature.NewFeature(f.FID(), gm, attrs)
	return
}

// OpenLayer 读取任意OGR数据源（path 或 path|layer）为内存图层。
// 未声明UTF-8编码的shp属性按GBK转码。
func (g *GdalToolbox) OpenLayer(source string) (l *feature.Layer, err error) {
	path, layerName := splitSource(source)
	drvName, err := driverFor(path)
	if err != nil {
		return
	}
	gbk := false
	if drvName == SHP_DRIVER_NAME {
		utf8, known := utils.GetShpEncoding(path)
		gbk = !known || !utf8
		// 关闭驱动自身的编码转换，读出原始字节后自行转码
		gdal.CPLSetConfigOption(SHAPE_ENC_KEY, "")
	}
	driver := gdal.OGRDriverByName(drvName)
	ds, ok := driver.Open(path, 0)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrGdalDriverOpen, path)
		return
	}
	defer ds.Destroy()
	var layer gdal.Layer
	switch {
	case layerName != "":
		layer = ds.LayerByName(layerName)
	case ds.LayerCount() > 0:
		layer = ds.LayerByIndex(0)
	}
	if layer == emptyLayer {
		err = fmt.Errorf("%w: %s", ErrGdalLayerMissing, source)
		return
	}
	l = &feature.Layer{
		Name:     layer.Name(),
		GeomType: fromGdalGeomType(layer.Definition().GeometryType()),
		Fields:   layerFields(layer, gbk),
	}
	if sp := layer.SpatialReference(); sp != emptyRef {
		l.CRS = g.crsOf(sp)
	}
	var (
		f   *gdal.Feature
		ff  *feature.Feature
		bad int
		gc  []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	if n, ok := layer.FeatureCount(false); ok && n > 0 {
		l.Features = make([]*feature.Feature, 0, n)
	}
	for {
		if f = layer.NextFeature(); f == nil {
			break
		}
		gc = append(gc, *f)
		if ff, err = g.readFeature(f, l.Fields, gbk); err != nil {
			log.Error(g.logTag+"err in feature read", zap.String("source", source), zap.Int64("fid", f.FID()), zap.Error(err))
			bad++
			err = nil
			continue
		}
		l.Features = append(l.Features, ff)
	}
	log.Info(g.logTag+"layer loaded", zap.String("source", source), zap.String("layer", l.Name),
		zap.String("crs", l.CRS.AuthID()), zap.Int("features", len(l.Features)), zap.Int("bad", bad))
	return
}

// Reproject 将图层整体转换到目标坐标系
func (g *GdalToolbox) Reproject(l *feature.Layer, to feature.CRS) (out *feature.Layer, err error) {
	src, srcOwned, err := g.getCrsRef(l.CRS)
	if err != nil {
		return
	}
	if srcOwned {
		defer src.Destroy()
	}
	dst, dstOwned, err := g.getCrsRef(to)
	if err != nil {
		return
	}
	if dstOwned {
		defer dst.Destroy()
	}
	trans := gdal.CreateCoordinateTransform(src, dst)
	defer trans.Destroy()
	var (
		fs  = make([]*feature.Feature, 0, len(l.Features))
		geo gdal.Geometry
	)
	for _, f := range l.Features {
		if f.Geometry == nil {
			fs = append(fs, f.CloneWithGeometry(f.FID, nil))
			continue
		}
		if geo, err = g.fromGeom(f.Geometry, src); err != nil {
			return
		}
		if err = geo.Transform(trans); err != nil {
			log.Error(g.logTag+"geo transform failed", zap.Int64("fid", f.FID), zap.Error(err))
			geo.Destroy()
			return
		}
		gm, e := g.toGeom(geo)
		geo.Destroy()
		if e != nil {
			err = e
			return
		}
		fs = append(fs, f.CloneWithGeometry(f.FID, gm))
	}
	out = l.WithFeatures(l.GeomType, fs)
	out.CRS = to
	log.Info(g.logTag+"layer reprojected", zap.String("layer", l.Name), zap.String("from", l.CRS.AuthID()), zap.String("to", to.AuthID()))
	return
}
