package process

import (
	"fmt"
	"sync"

	"github.com/wgdzlh/gdalref/feature"

	"github.com/twpayne/go-geom"
)

// 算法依赖的宿主能力：解析数据源、重投影图层、创建输出
type Services interface {
	OpenLayer(source string) (*feature.Layer, error)
	Reproject(l *feature.Layer, to feature.CRS) (*feature.Layer, error)
	CreateSink(dest string, schema feature.Schema) (feature.FeatureSink, error)
}

type CoordTransform = func(c geom.Coord) geom.Coord

// 基于内存图层与内存输出的Services，仅支持已注册的(from, to)重投影
type MemoryServices struct {
	mu         sync.Mutex
	layers     map[string]*feature.Layer
	transforms map[[2]int]CoordTransform
	sinks      map[string]*feature.MemorySink
}

var _ Services = (*MemoryServices)(nil)

func NewMemoryServices() *MemoryServices {
	return &MemoryServices{
		layers:     map[string]*feature.Layer{},
		transforms: map[[2]int]CoordTransform{},
		sinks:      map[string]*feature.MemorySink{},
	}
}

func (m *MemoryServices) AddLayer(source string, l *feature.Layer) {
	m.mu.Lock()
	m.layers[source] = l
	m.mu.Unlock()
}

func (m *MemoryServices) AddTransform(fromSrid, toSrid int, t CoordTransform) {
	m.mu.Lock()
	m.transforms[[2]int{fromSrid, toSrid}] = t
	m.mu.Unlock()
}

func (m *MemoryServices) Sink(dest string) *feature.MemorySink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sinks[dest]
}

func (m *MemoryServices) OpenLayer(source string) (*feature.Layer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.layers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, source)
	}
	return l, nil
}

func (m *MemoryServices) Reproject(l *feature.Layer, to feature.CRS) (out *feature.Layer, err error) {
	m.mu.Lock()
	t, ok := m.transforms[[2]int{l.CRS.Srid, to.Srid}]
	m.mu.Unlock()
	if !ok {
		err = fmt.Errorf("%w: %s -> %s", ErrNoReprojection, l.CRS, to)
		return
	}
	fs := make([]*feature.Feature, len(l.Features))
	for i, f := range l.Features {
		fs[i] = f.CloneWithGeometry(f.FID, feature.TransformCoords(f.Geometry, t))
	}
	out = l.WithFeatures(l.GeomType, fs)
	out.CRS = to
	return
}

// 任意输出名都创建内存输出，之后可用Sink取回
func (m *MemoryServices) CreateSink(dest string, schema feature.Schema) (feature.FeatureSink, error) {
	s := feature.NewMemorySink(schema)
	m.mu.Lock()
	m.sinks[dest] = s
	m.mu.Unlock()
	return s, nil
}

// OUTPUT转输出：传入的sink原样使用，不归调用方；路径经svc创建（memory:可无svc），由调用方关闭
func OpenSink(svc Services, dest any, schema feature.Schema) (sink feature.FeatureSink, owned bool, err error) {
	switch d := dest.(type) {
	case feature.FeatureSink:
		sink = d
	case string:
		switch {
		case svc != nil:
			sink, err = svc.CreateSink(d, schema)
		case d == MemoryDestination:
			sink = feature.NewMemorySink(schema)
		default:
			err = ErrNoServices
		}
		if err != nil {
			err = fmt.Errorf(ErrInvalidSinkTemplate+": %w", d, err, ErrInvalidSink)
			return
		}
		owned = true
	default:
		err = fmt.Errorf(ErrInvalidSinkTemplate+": %w", ParamOutput, fmt.Errorf("%w: unexpected %T", ErrInvalidParam, dest), ErrInvalidSink)
	}
	return
}
