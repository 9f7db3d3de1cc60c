package linref

import (
	"fmt"

	"github.com/wgdzlh/gdalref/feature"

	"github.com/twpayne/go-geom"
)

const (
	FieldFid             = "fid"
	FieldEventID         = "event_id"
	FieldEventLayer      = "event_layer"
	FieldEventComment    = "event_comment"
	FieldDistanceAway    = "distance_away"
	FieldDistanceLine    = "distance_line"
	FieldDistanceLineStr = "distance_line_str"
	FieldSideOfLine      = "side_of_line"
	FieldLineX           = "line_x"
	FieldLineY           = "line_y"
	FieldEventType       = "event_type"
)

const (
	EventTypeUnitary = "Unitary"
	EventTypeStart   = "Start"
	EventTypeEnd     = "End"

	// 无ID事件，不参与合并
	NoEventID = "-"
)

const (
	DefaultEventIDField = "GUID"
	DefaultCommentField = "comment"
)

// shp字符串字段宽度上限
const maxStringWidth = 254

func OutputSchema(crs feature.CRS) feature.Schema {
	return feature.Schema{
		Fields: []feature.Field{
			{Name: FieldFid, Type: feature.FieldInteger64},
			{Name: FieldEventID, Type: feature.FieldString, Width: maxStringWidth},
			{Name: FieldEventLayer, Type: feature.FieldString, Width: maxStringWidth},
			{Name: FieldEventComment, Type: feature.FieldString},
			{Name: FieldDistanceAway, Type: feature.FieldReal},
			{Name: FieldDistanceLine, Type: feature.FieldReal},
			{Name: FieldDistanceLineStr, Type: feature.FieldString, Width: maxStringWidth},
			{Name: FieldSideOfLine, Type: feature.FieldString, Width: maxStringWidth},
			{Name: FieldLineX, Type: feature.FieldReal},
			{Name: FieldLineY, Type: feature.FieldReal},
			{Name: FieldEventType, Type: feature.FieldString, Width: maxStringWidth},
		},
		GeomType: feature.GeomMultiPoint,
		CRS:      crs,
	}
}

// 一条定位后的事件
type Record struct {
	FID            int64
	EventID        string
	EventLayer     string
	Comment        string
	DistanceAway   float64
	DistanceOnLine float64
	Station        string
	Side           Side
	Event          geom.Coord
	OnLine         geom.Coord
	EventType      string
}

func newRecord(fid int64, layer string, ev *feature.Feature, c geom.Coord, pr Projection, cfg *Config) *Record {
	r := &Record{
		FID:            fid,
		EventID:        NoEventID,
		EventLayer:     layer,
		DistanceAway:   pr.DistanceAway,
		DistanceOnLine: pr.DistanceOnLine,
		Station:        FormatStation(pr.DistanceOnLine, cfg.Station),
		Side:           pr.Side,
		Event:          c,
		OnLine:         pr.Point,
		EventType:      EventTypeUnitary,
	}
	if v, ok := ev.Attribute(cfg.EventIDField); ok {
		r.EventID = fmt.Sprint(v)
	}
	if v, ok := ev.Attribute(cfg.CommentField); ok {
		r.Comment = fmt.Sprint(v)
	}
	return r
}

// 两点几何：事件点及其在中线上的投影
func (r *Record) Feature() *feature.Feature {
	mp := geom.NewMultiPoint(geom.XY).MustSetCoords([]geom.Coord{
		{r.Event.X(), r.Event.Y()},
		{r.OnLine.X(), r.OnLine.Y()},
	})
	return feature.NewFeature(r.FID, mp, map[string]any{
		FieldFid:             r.FID,
		FieldEventID:         r.EventID,
		FieldEventLayer:      r.EventLayer,
		FieldEventComment:    r.Comment,
		FieldDistanceAway:    r.DistanceAway,
		FieldDistanceLine:    r.DistanceOnLine,
		FieldDistanceLineStr: r.Station,
		FieldSideOfLine:      r.Side.String(),
		FieldLineX:           r.OnLine.X(),
		FieldLineY:           r.OnLine.Y(),
		FieldEventType:       r.EventType,
	})
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
