package linref

import (
	"context"
	"errors"
	"fmt"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/process"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const logTag = "linref: "

// 校验后的线性参考任务
type Config struct {
	Alignment    *Alignment
	Events       []*feature.Layer
	Epsilon      float64
	Consolidate  bool
	Station      float64
	EventIDField string
	CommentField string
	// FeatureSink或输出路径
	Output any
}

type Stats struct {
	RunID        string
	Layers       int
	Events       int
	Written      int
	Filtered     int
	Groups       int
	Deleted      int
	Canceled     bool
	Output       feature.FeatureSink
	OutputSchema feature.Schema
}

// 沿中线定位点事件
type Algorithm struct {
	svc process.Services
}

func New(svc process.Services) *Algorithm {
	return &Algorithm{svc: svc}
}

// 读取并校验参数，所有配置错误均在创建输出前返回
func (a *Algorithm) Validate(params process.Params) (cfg *Config, err error) {
	cfg = &Config{}
	if cfg.Epsilon, err = params.Float(process.ParamEpsilon, EpsilonUnfiltered); err != nil {
		return nil, err
	}
	if cfg.Epsilon < 0 && cfg.Epsilon != EpsilonUnfiltered {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEpsilon, cfg.Epsilon)
	}
	if cfg.Consolidate, err = params.Bool(process.ParamConsolidate, true); err != nil {
		return nil, err
	}
	if cfg.Station, err = params.Float(process.ParamStation, DefaultStation); err != nil {
		return nil, err
	}
	if cfg.Station <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStation, cfg.Station)
	}
	if cfg.EventIDField, err = params.String(process.ParamEventIDField, DefaultEventIDField); err != nil {
		return nil, err
	}
	if cfg.CommentField, err = params.String(process.ParamCommentField, DefaultCommentField); err != nil {
		return nil, err
	}
	if cfg.Output, err = params.Destination(); err != nil {
		return nil, err
	}
	if d, ok := cfg.Output.(string); ok && a.svc == nil && d != process.MemoryDestination {
		return nil, fmt.Errorf(process.ErrInvalidSinkTemplate+": %w", d, process.ErrNoServices, process.ErrInvalidSink)
	}
	line, err := params.Layer(process.ParamInput, a.svc)
	if err != nil {
		return nil, err
	}
	if cfg.Alignment, err = NewAlignment(line); err != nil {
		return nil, err
	}
	if cfg.Events, err = params.Layers(process.ParamEvents, a.svc); err != nil {
		return nil, err
	}
	for _, l := range cfg.Events {
		if l.FeatureCount() < 1 {
			continue
		}
		if err = checkEventCRS(l, cfg.Alignment.CRS); err != nil {
			return nil, err
		}
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

// 将事件投影到中线并逐条写出，再按事件ID合并；取消时跳过剩余图层，已写记录仍参与合并
func (a *Algorithm) Run(ctx context.Context, cfg *Config, fb process.Feedback) (st *Stats, err error) {
	st = &Stats{RunID: uuid.NewString()}
	crs := cfg.Alignment.CRS
	fb.PushInfo(fmt.Sprintf("CRS is %s, Units are %s", crs.AuthID(), crs.Units), zap.String("run", st.RunID))

	layers, total, err := NormalizeEventLayers(cfg.Events, crs, fb)
	if err != nil {
		return
	}
	st.Layers = len(layers)

	st.OutputSchema = OutputSchema(crs)
	sink, owned, err := process.OpenSink(a.svc, cfg.Output, st.OutputSchema)
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

	fb.SetProgress(0)
	var fid int64
	for _, l := range layers {
		if process.Canceled(ctx) {
			st.Canceled = true
			fb.PushWarning("Canceled, skipping remaining event layers")
			break
		}
		for _, ev := range l.Features {
			st.Events++
			vs := feature.Vertices(ev.Geometry)
			if len(vs) == 0 {
				fb.PushWarning("Event without geometry, skipping", zap.String("layer", l.Name), zap.Int64("fid", ev.FID))
				continue
			}
			pr := cfg.Alignment.Project(vs[0])
			if !WithinEpsilon(pr.DistanceAway, cfg.Epsilon) {
				st.Filtered++
			} else {
				fid++
				rec := newRecord(fid, l.Name, ev, vs[0], pr, cfg)
				if err = sink.AddFeature(rec.Feature()); err != nil {
					err = fmt.Errorf("write record %d: %w", fid, err)
					return
				}
				st.Written++
				if fid%1000 == 0 {
					fb.PushDebug("Records written", zap.Int64("count", fid))
				}
			}
			if total > 0 {
				fb.SetProgress(float64(st.Events) / float64(total) * 100)
			}
		}
		if err = sink.Flush(); err != nil {
			return
		}
	}

	if !cfg.Consolidate {
		return
	}
	editable, ok := sink.(feature.EditableSink)
	if !ok {
		err = ErrSinkNotEditable
		return
	}
	fb.PushInfo("Consolidating events")
	res, err := Consolidate(editable, fb)
	if err != nil {
		return
	}
	st.Groups, st.Deleted = res.Groups, res.Deleted
	fb.PushInfo("Events consolidated", zap.Int("groups", res.Groups), zap.Int("deleted", res.Deleted))
	return
}

// 是否为创建输出前的校验错误
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrAlignmentCount, ErrAlignmentMultipart, ErrAlignmentGeographic, ErrAlignmentUnits,
		ErrAlignmentNotLine, ErrAlignmentVertices, ErrCrsMismatch, ErrInvalidEpsilon, ErrInvalidStation,
		process.ErrInvalidSource, process.ErrInvalidSink, process.ErrMissingParam, process.ErrInvalidParam,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
