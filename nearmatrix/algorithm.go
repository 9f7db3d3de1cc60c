package nearmatrix

import (
	"context"
	"errors"
	"fmt"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/process"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// 距离字段；任一侧无几何时距离为EmptyDistance
const (
	FieldDistance = "distance"
	EmptyDistance = -1.0
)

type Config struct {
	Input      *feature.Layer
	Near       *feature.Layer
	InputField string
	NearField  string
	Output     any
}

type Stats struct {
	RunID        string
	Inputs       int
	Nears        int
	Pairs        int
	EmptyPairs   int
	Reprojected  bool
	Canceled     bool
	Output       feature.FeatureSink
	OutputSchema feature.Schema
}

// 计算每对输入要素与邻近要素的距离及最短连接线
type Algorithm struct {
	svc process.Services
}

func New(svc process.Services) *Algorithm {
	return &Algorithm{svc: svc}
}

func hasField(l *feature.Layer, name string) bool {
	if l.FieldIndex(name) >= 0 {
		return true
	}
	if len(l.Fields) > 0 {
		return false
	}
	for _, f := range l.Features {
		if _, ok := f.Attributes[name]; ok {
			return true
		}
	}
	return false
}

func fieldOf(l *feature.Layer, name string) feature.Field {
	if f, ok := l.Field(name); ok {
		return f
	}
	return feature.Field{Name: name, Type: feature.FieldString, Width: 254}
}

// 输出结构及邻近字段写出名，与输入字段重名时加"_"
func OutputSchema(cfg *Config) (schema feature.Schema, nearName string) {
	in := fieldOf(cfg.Input, cfg.InputField)
	near := fieldOf(cfg.Near, cfg.NearField)
	nearName = cfg.NearField
	if nearName == cfg.InputField {
		nearName += "_"
	}
	near.Name = nearName
	schema = feature.Schema{
		Fields:   []feature.Field{in, near, {Name: FieldDistance, Type: feature.FieldReal}},
		GeomType: feature.GeomLineString,
		CRS:      cfg.Input.CRS,
	}
	return
}

func (a *Algorithm) Validate(params process.Params) (cfg *Config, err error) {
	cfg = &Config{}
	if cfg.Input, err = params.Layer(process.ParamInput, a.svc); err != nil {
		return nil, err
	}
	if cfg.Near, err = params.Layer(process.ParamNear, a.svc); err != nil {
		return nil, err
	}
	if cfg.InputField, err = params.RequiredString(process.ParamInputField); err != nil {
		return nil, err
	}
	if cfg.NearField, err = params.RequiredString(process.ParamNearField); err != nil {
		return nil, err
	}
	if !hasField(cfg.Input, cfg.InputField) {
		return nil, fmt.Errorf(ErrFieldMissingTemplate, ErrFieldMissing, cfg.Input.Name, cfg.InputField)
	}
	if !hasField(cfg.Near, cfg.NearField) {
		return nil, fmt.Errorf(ErrFieldMissingTemplate, ErrFieldMissing, cfg.Near.Name, cfg.NearField)
	}
	if cfg.Output, err = params.Destination(); err != nil {
		return nil, err
	}
	if d, ok := cfg.Output.(string); ok && a.svc == nil && d != process.MemoryDestination {
		return nil, fmt.Errorf(process.ErrInvalidSinkTemplate+": %w", d, process.ErrNoServices, process.ErrInvalidSink)
	}
	return
}

func (a *Algorithm) Execute(ctx context.Context, params process.Params, fb process.Feedback) (*Stats, error) {
	cfg, err := a.Validate(params)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, cfg, fb)
}

// 按输入要素优先逐对输出，每个输入要素检查一次取消并汇报进度
func (a *Algorithm) Run(ctx context.Context, cfg *Config, fb process.Feedback) (st *Stats, err error) {
	st = &Stats{
		RunID:  uuid.NewString(),
		Inputs: cfg.Input.FeatureCount(),
		Nears:  cfg.Near.FeatureCount(),
	}
	near := cfg.Near
	if !near.CRS.Equal(cfg.Input.CRS) {
		if a.svc == nil {
			err = fmt.Errorf("reproject %s: %w", near.Name, process.ErrNoReprojection)
			return
		}
		fb.PushInfo("Reprojecting near layer", zap.String("from", near.CRS.AuthID()), zap.String("to", cfg.Input.CRS.AuthID()))
		if near, err = a.svc.Reproject(near, cfg.Input.CRS); err != nil {
			err = fmt.Errorf("reproject %s: %w", cfg.Near.Name, err)
			return
		}
		st.Reprojected = true
	}

	schema, nearName := OutputSchema(cfg)
	st.OutputSchema = schema
	sink, owned, err := process.OpenSink(a.svc, cfg.Output, schema)
	if err != nil {
		return
	}
	st.Output = sink
	if owned {
		defer func() {
			if cerr := sink.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
	}

	fb.PushDebug(fmt.Sprintf("Input Count: %d, Near Count: %d", st.Inputs, st.Nears))
	var fid int64
	for i, in := range cfg.Input.Features {
		if process.Canceled(ctx) {
			st.Canceled = true
			fb.PushWarning("Canceled, skipping remaining input features")
			break
		}
		inVal := in.Attributes[cfg.InputField]
		for _, nf := range near.Features {
			line, dist, serr := feature.ShortestLine(in.Geometry, nf.Geometry)
			switch {
			case errors.Is(serr, feature.ErrEmptyGeometry):
				line, dist = geom.NewLineString(geom.XY), EmptyDistance
				st.EmptyPairs++
				fb.PushDebug("Empty geometry in pair", zap.Int64("input", in.FID), zap.Int64("near", nf.FID))
			case serr != nil:
				err = fmt.Errorf("pair %d/%d: %w", in.FID, nf.FID, serr)
				return
			}
			fid++
			rec := feature.NewFeature(fid, line, map[string]any{
				cfg.InputField: inVal,
				nearName:       nf.Attributes[cfg.NearField],
				FieldDistance:  dist,
			})
			if err = sink.AddFeature(rec); err != nil {
				err = fmt.Errorf("write pair %d: %w", fid, err)
				return
			}
			st.Pairs++
		}
		fb.SetProgress(float64(i+1) / float64(st.Inputs) * 100)
	}
	err = sink.Flush()
	return
}
