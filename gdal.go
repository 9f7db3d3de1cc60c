package gdalref

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/log"
	"github.com/wgdzlh/gdalref/process"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// GdalToolbox 基于GDAL/OGR实现 process.Services
type GdalToolbox struct {
	refMap map[int]gdal.SpatialReference
	rLock  sync.Mutex
	logTag string
}

var _ process.Services = (*GdalToolbox)(nil)

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

var (
	emptyGeometry = gdal.Geometry{}
)

func NewGdalToolbox() *GdalToolbox {
	return &GdalToolbox{
		refMap: map[int]gdal.SpatialReference{},
		logTag: "GdalToolbox:",
	}
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[srid]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil {
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 数据轴次序固定为(经度,纬度)/(东,北)，避免坐标转换后次序倒置
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[srid] = ref
	return
}

// 获取CRS对应的坐标系；无srid时由WKT创建，owned为true表示调用方需回收
func (g *GdalToolbox) getCrsRef(crs feature.CRS) (ref gdal.SpatialReference, owned bool, err error) {
	if crs.Srid > 0 {
		ref, err = g.getSridRef(crs.Srid)
		return
	}
	if strings.TrimSpace(crs.Wkt) == "" {
		err = ErrInvalidCRS
		return
	}
	ref = gdal.CreateSpatialReference(crs.Wkt)
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	owned = true
	return
}

func (g *GdalToolbox) getSrid(sp gdal.SpatialReference) (srid int, err error) {
	wkt, _ := sp.ToWKT()
	rawId, ok := sp.AttrValue("AUTHORITY", 1)
	if !ok && sp.AutoIdentifyEPSG() == nil { // 不规范的shp文件（.prj无AUTHORITY）
		rawId, ok = sp.AttrValue("AUTHORITY", 1)
	}
	if !ok {
		if strings.Contains(wkt, "CGCS_2000") {
			srid = CGCS2000_SRID
			return
		}
		err = ErrVoidSrid
		return
	}
	srid, err = strconv.Atoi(rawId)
	log.Debug(g.logTag+"got srid from sp", zap.String("id", rawId))
	return
}

// 读取坐标系属性：srid、WKT、是否地理坐标系及线性单位
func (g *GdalToolbox) crsOf(sp gdal.SpatialReference) (crs feature.CRS) {
	crs.Wkt, _ = sp.ToWKT()
	if crs.Wkt == "" {
		return
	}
	if srid, err := g.getSrid(sp); err == nil {
		crs.Srid = srid
	}
	crs.Geographic = sp.IsGeographic()
	if crs.Geographic {
		crs.Units = feature.UnitDegrees
		return
	}
	name, toMeters := sp.LinearUnits()
	crs.Units = feature.UnitFromLinear(name, toMeters)
	return
}
