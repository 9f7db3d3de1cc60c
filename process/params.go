package process

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wgdzlh/gdalref/feature"
)

// 算法参数名
const (
	ParamInput        = "INPUT"
	ParamOutput       = "OUTPUT"
	ParamEvents       = "EVENTS"
	ParamEpsilon      = "EPSILON"
	ParamConsolidate  = "CONSOLIDATE"
	ParamStation      = "STATION"
	ParamEventIDField = "EVENTIDFIELD"
	ParamCommentField = "COMMENTFIELD"
	ParamNear         = "NEAR"
	ParamInputField   = "INPUTFIELD"
	ParamNearField    = "NEARFIELD"

	// 输出到feature.MemorySink
	MemoryDestination = "memory:"
)

// 参数表；图层参数可为*feature.Layer或经Services解析的数据源字符串
type Params map[string]any

func (p Params) has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

func (p Params) Float(key string, def float64) (ret float64, err error) {
	if !p.has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case float64:
		ret = v
	case float32:
		ret = float64(v)
	case int:
		ret = float64(v)
	case int64:
		ret = float64(v)
	case string:
		if ret, err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			err = fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
		}
	default:
		err = fmt.Errorf("%w: %s has type %T", ErrInvalidParam, key, v)
	}
	return
}

func (p Params) Bool(key string, def bool) (ret bool, err error) {
	if !p.has(key) {
		return def, nil
	}
	switch v := p[key].(type) {
	case bool:
		ret = v
	case string:
		if ret, err = strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			err = fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, v)
		}
	default:
		err = fmt.Errorf("%w: %s has type %T", ErrInvalidParam, key, v)
	}
	return
}

func (p Params) String(key, def string) (ret string, err error) {
	if !p.has(key) {
		return def, nil
	}
	v, ok := p[key].(string)
	if !ok {
		err = fmt.Errorf("%w: %s has type %T", ErrInvalidParam, key, p[key])
		return
	}
	if ret = strings.TrimSpace(v); ret == "" {
		ret = def
	}
	return
}

func (p Params) RequiredString(key string) (ret string, err error) {
	if ret, err = p.String(key, ""); err == nil && ret == "" {
		err = fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return
}

// 解析单个图层参数
func (p Params) Layer(key string, svc Services) (l *feature.Layer, err error) {
	if !p.has(key) {
		err = fmt.Errorf(ErrInvalidSourceTemplate+": %w", key, ErrMissingParam, ErrInvalidSource)
		return
	}
	if l, err = resolveLayer(p[key], svc); err != nil {
		err = fmt.Errorf(ErrInvalidSourceTemplate+": %w", key, err, ErrInvalidSource)
	}
	return
}

// 解析图层列表参数，单个值视为一个元素的列表
func (p Params) Layers(key string, svc Services) (ls []*feature.Layer, err error) {
	if !p.has(key) {
		err = fmt.Errorf(ErrInvalidSourceTemplate+": %w", key, ErrMissingParam, ErrInvalidSource)
		return
	}
	var items []any
	switch v := p[key].(type) {
	case []*feature.Layer:
		for _, l := range v {
			items = append(items, l)
		}
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case []any:
		items = v
	default:
		items = []any{v}
	}
	var l *feature.Layer
	for _, it := range items {
		if l, err = resolveLayer(it, svc); err != nil {
			err = fmt.Errorf(ErrInvalidSourceTemplate+": %w", key, err, ErrInvalidSource)
			return
		}
		ls = append(ls, l)
	}
	return
}

func resolveLayer(v any, svc Services) (l *feature.Layer, err error) {
	switch s := v.(type) {
	case *feature.Layer:
		if s == nil {
			err = ErrMissingParam
			return
		}
		l = s
	case string:
		if svc == nil {
			err = ErrLayerNotFound
			return
		}
		l, err = svc.OpenLayer(s)
	default:
		err = fmt.Errorf("%w: unexpected %T", ErrInvalidParam, v)
	}
	return
}

// OUTPUT参数：FeatureSink或输出路径，未设置时为memory:
func (p Params) Destination() (any, error) {
	if !p.has(ParamOutput) {
		return MemoryDestination, nil
	}
	switch v := p[ParamOutput].(type) {
	case feature.FeatureSink:
		return v, nil
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return MemoryDestination, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf(ErrInvalidSinkTemplate+": %w", ParamOutput, fmt.Errorf("%w: unexpected %T", ErrInvalidParam, v), ErrInvalidSink)
	}
}
