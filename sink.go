package gdalref

import (
	"fmt"
	"os"
	"sync"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/log"
	"github.com/wgdzlh/gdalref/process"
	"github.com/wgdzlh/gdalref/utils"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// ogrSink 将要素写入OGR数据源；删除与属性修改在CommitChanges时统一落盘
type ogrSink struct {
	g        *GdalToolbox
	path     string
	schema   feature.Schema
	ds       gdal.DataSource
	layer    gdal.Layer
	ref      gdal.SpatialReference
	refOwned bool
	// 非空时ds为内存数据源，Close时按该驱动导出
	outDriver string
	outOpts   []string

	mu      sync.Mutex
	deletes map[int64]struct{}
	changes map[int64]map[string]any
	closed  bool
}

var _ feature.EditableSink = (*ogrSink)(nil)

// CreateSink 按后缀创建输出数据源（memory: 为内存输出）。目标文件已存在时报错。
func (g *GdalToolbox) CreateSink(dest string, schema feature.Schema) (sink feature.FeatureSink, err error) {
	if dest == process.MemoryDestination {
		return feature.NewMemorySink(schema), nil
	}
	drvName, err := driverFor(dest)
	if err != nil {
		return
	}
	if _, e := os.Stat(dest); e == nil {
		err = fmt.Errorf("%w: %s", ErrGdalDestExists, dest)
		return
	}
	ref, owned, err := g.getCrsRef(schema.CRS)
	if err != nil {
		return
	}
	log.Info(g.logTag+"create sink", zap.String("dest", dest), zap.String("driver", drvName), zap.String("crs", schema.CRS.AuthID()))
	staged := stagedDrivers[drvName]
	driver := gdal.OGRDriverByName(drvName)
	if staged {
		driver = gdal.OGRDriverByName(MEM_DRIVER_NAME)
	}
	ds, ok := driver.Create(dest, nil)
	if !ok {
		if owned {
			ref.Destroy()
		}
		err = ErrGdalDriverCreate
		return
	}
	s := &ogrSink{
		g:        g,
		path:     dest,
		schema:   schema,
		ds:       ds,
		ref:      ref,
		refOwned: owned,
		deletes:  map[int64]struct{}{},
		changes:  map[int64]map[string]any{},
	}
	var opts []string
	switch drvName {
	case SHP_DRIVER_NAME:
		opts = []string{ENCODING_OPTION}
	case CSV_DRIVER_NAME:
		opts = []string{CSV_GEOM_OPTION}
	case GPKG_DRIVER_NAME:
		opts = []string{GPKG_FID_OPTION}
	}
	if staged {
		s.outDriver, s.outOpts, opts = drvName, opts, nil
	}
	s.layer = ds.CreateLayer(utils.GetFilenameWithoutExt(dest), ref, toGdalGeomType(schema.GeomType), opts)
	if s.layer == emptyLayer {
		s.release()
		err = ErrGdalLayerCreate
		return
	}
	for _, f := range schema.Fields {
		fd := gdal.CreateFieldDefinition(f.Name, toGdalFieldType(f.Type))
		if f.Width > 0 {
			fd.SetWidth(f.Width)
		}
		err = s.layer.CreateField(fd, false)
		fd.Destroy()
		if err != nil {
			log.Error(g.logTag+"create field failed", zap.String("field", f.Name), zap.Error(err))
			s.release()
			return
		}
	}
	sink = s
	return
}

func (s *ogrSink) Schema() feature.Schema {
	return s.schema
}

// 字段按schema中的下标写入，shp截断字段名不影响对应关系
func setField(f gdal.Feature, idx int, v any) {
	switch val := v.(type) {
	case nil:
	case string:
		f.SetFieldString(idx, val)
	case int:
		f.SetFieldInteger(idx, val)
	case int32:
		f.SetFieldInteger(idx, int(val))
	case int64:
		f.SetFieldInteger64(idx, val)
	case float64:
		f.SetFieldFloat64(idx, val)
	case float32:
		f.SetFieldFloat64(idx, float64(val))
	case bool:
		if val {
			f.SetFieldInteger(idx, 1)
		} else {
			f.SetFieldInteger(idx, 0)
		}
	default:
		f.SetFieldString(idx, fmt.Sprint(val))
	}
}

func (s *ogrSink) AddFeature(f *feature.Feature) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return feature.ErrSinkClosed
	}
	of := s.layer.Definition().Create()
	defer of.Destroy()
	if f.FID > 0 {
		if err = of.SetFID(f.FID); err != nil {
			log.Error(s.g.logTag+"err in set feature fid", zap.Error(err))
			return
		}
	}
	for i, fd := range s.schema.Fields {
		setField(of, i, f.Attributes[fd.Name])
	}
	if f.Geometry != nil {
		if gt := feature.GeomTypeOf(f.Geometry); s.schema.GeomType != feature.GeomUnknown && gt != s.schema.GeomType {
			return fmt.Errorf("%w: %s into %s layer", ErrGdalWrongGeoType, gt, s.schema.GeomType)
		}
		var geo gdal.Geometry
		if geo, err = s.g.fromGeom(f.Geometry, s.ref); err != nil {
			return
		}
		if err = of.SetGeometryDirectly(geo); err != nil {
			log.Error(s.g.logTag+"err in set geom of feature", zap.Error(err))
			return
		}
	}
	if err = s.layer.Create(of); err != nil {
		log.Error(s.g.logTag+"err in create feature of layer", zap.Int64("fid", f.FID), zap.Error(err))
	}
	return
}

func (s *ogrSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return feature.ErrSinkClosed
	}
	return s.layer.SyncToDisk()
}

// Features 读回已写入的要素，FID为数据源中的FID
func (s *ogrSink) Features() (ret []*feature.Feature, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, feature.ErrSinkClosed
	}
	var (
		f  *gdal.Feature
		ff *feature.Feature
		gc []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	s.layer.ResetReading()
	for {
		if f = s.layer.NextFeature(); f == nil {
			return
		}
		gc = append(gc, *f)
		if ff, err = s.g.readFeature(f, s.schema.Fields, false); err != nil {
			return
		}
		ret = append(ret, ff)
	}
}

func (s *ogrSink) DeleteFeatures(fids []int64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, feature.ErrSinkClosed
	}
	for _, fid := range fids {
		if _, ok := s.deletes[fid]; ok {
			continue
		}
		s.deletes[fid] = struct{}{}
		delete(s.changes, fid)
		n++
	}
	return
}

func (s *ogrSink) ChangeAttributeValue(fid int64, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return feature.ErrSinkClosed
	}
	if s.schema.FieldIndex(field) < 0 {
		return fmt.Errorf("%w: %s", feature.ErrFieldNotInSchema, field)
	}
	if _, ok := s.deletes[fid]; ok {
		return fmt.Errorf("%w: %d", feature.ErrFeatureNotFound, fid)
	}
	ch, ok := s.changes[fid]
	if !ok {
		ch = map[string]any{}
		s.changes[fid] = ch
	}
	ch[field] = value
	return nil
}

// CommitChanges 先删除，再改写属性，最后同步到磁盘
func (s *ogrSink) CommitChanges() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return feature.ErrSinkClosed
	}
	for fid := range s.deletes {
		if err = s.layer.Delete(fid); err != nil {
			log.Error(s.g.logTag+"err in delete feature", zap.Int64("fid", fid), zap.Error(err))
			return
		}
	}
	var (
		f       *gdal.Feature
		touched []*gdal.Feature
		gc      []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	if len(s.changes) > 0 {
		s.layer.ResetReading()
		for {
			if f = s.layer.NextFeature(); f == nil {
				break
			}
			gc = append(gc, *f)
			ch, ok := s.changes[f.FID()]
			if !ok {
				continue
			}
			for name, v := range ch {
				setField(*f, s.schema.FieldIndex(name), v)
			}
			touched = append(touched, f)
			delete(s.changes, f.FID())
		}
	}
	for _, f = range touched {
		if err = s.layer.SetFeature(*f); err != nil {
			log.Error(s.g.logTag+"err in set feature of layer", zap.Int64("fid", f.FID()), zap.Error(err))
			return
		}
	}
	if len(s.changes) > 0 {
		for fid := range s.changes {
			err = fmt.Errorf("%w: %d", ErrGdalFeatureMissing, fid)
			break
		}
		return
	}
	s.deletes = map[int64]struct{}{}
	err = s.layer.SyncToDisk()
	log.Debug(s.g.logTag+"sink changes committed", zap.String("dest", s.path), zap.Int("touched", len(touched)))
	return
}

func (s *ogrSink) release() {
	s.ds.Destroy()
	if s.refOwned {
		s.ref.Destroy()
	}
}

// 将内存图层复制为目标文件
func (s *ogrSink) export() (err error) {
	ds, ok := gdal.OGRDriverByName(s.outDriver).Create(s.path, nil)
	if !ok {
		return ErrGdalDriverCreate
	}
	defer ds.Destroy()
	if l := ds.CopyLayer(s.layer, utils.GetFilenameWithoutExt(s.path), s.outOpts); l == emptyLayer {
		err = ErrGdalLayerCreate
	}
	return
}

// Close 丢弃未提交的修改并生成输出文件
func (s *ogrSink) Close() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.outDriver != "" {
		if err = s.export(); err != nil {
			log.Error(s.g.logTag+"export staged layer failed", zap.String("dest", s.path), zap.String("driver", s.outDriver), zap.Error(err))
		}
	}
	s.release()
	log.Info(s.g.logTag+"sink closed", zap.String("dest", s.path))
	return
}
