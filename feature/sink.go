package feature

import (
	"fmt"
	"sync"
)

// 输出要素的接收端
type FeatureSink interface {
	Schema() Schema
	AddFeature(f *Feature) error
	Flush() error
	Close() error
}

// 可回读、删除和原地修改的输出，编辑方法中的FID取自Features
type EditableSink interface {
	FeatureSink
	Features() ([]*Feature, error)
	DeleteFeatures(fids []int64) (int, error)
	ChangeAttributeValue(fid int64, field string, value any) error
	CommitChanges() error
}

// 内存输出，按写入顺序保存；FID为0的要素按序号分配
type MemorySink struct {
	schema   Schema
	mu       sync.Mutex
	features []*Feature
	byFid    map[int64]int
	nextFid  int64
	closed   bool
}

var _ EditableSink = (*MemorySink)(nil)

func NewMemorySink(schema Schema) *MemorySink {
	return &MemorySink{
		schema:  schema,
		byFid:   map[int64]int{},
		nextFid: 1,
	}
}

func (s *MemorySink) Schema() Schema {
	return s.schema
}

func (s *MemorySink) AddFeature(f *Feature) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	c := f.CloneWithGeometry(f.FID, f.Geometry)
	if c.FID == 0 {
		c.FID = s.nextFid
	}
	if c.FID >= s.nextFid {
		s.nextFid = c.FID + 1
	}
	s.byFid[c.FID] = len(s.features)
	s.features = append(s.features, c)
	return
}

func (s *MemorySink) Flush() error {
	return nil
}

// 关闭后不可写入，已写要素仍可读
func (s *MemorySink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *MemorySink) Features() ([]*Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]*Feature, 0, len(s.byFid))
	for _, f := range s.features {
		if f != nil {
			ret = append(ret, f)
		}
	}
	return ret, nil
}

func (s *MemorySink) FeatureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byFid)
}

func (s *MemorySink) DeleteFeatures(fids []int64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fid := range fids {
		i, ok := s.byFid[fid]
		if !ok {
			continue
		}
		s.features[i] = nil
		delete(s.byFid, fid)
		n++
	}
	return
}

func (s *MemorySink) ChangeAttributeValue(fid int64, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema.FieldIndex(field) < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotInSchema, field)
	}
	i, ok := s.byFid[fid]
	if !ok {
		return fmt.Errorf("%w: %d", ErrFeatureNotFound, fid)
	}
	s.features[i].Attributes[field] = value
	return nil
}

// 清理已删除的槽位
func (s *MemorySink) CommitChanges() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.features[:0]
	for _, f := range s.features {
		if f != nil {
			live = append(live, f)
		}
	}
	for i := len(live); i < len(s.features); i++ {
		s.features[i] = nil
	}
	s.features = live
	for i, f := range s.features {
		s.byFid[f.FID] = i
	}
	return nil
}

// 以name为名导出为图层快照
func (s *MemorySink) Layer(name string) *Layer {
	fs, _ := s.Features()
	return &Layer{
		Name:     name,
		CRS:      s.schema.CRS,
		GeomType: s.schema.GeomType,
		Fields:   s.schema.Fields,
		Features: fs,
	}
}
