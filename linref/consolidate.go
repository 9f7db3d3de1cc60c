package linref

import (
	"fmt"
	"sort"

	"github.com/wgdzlh/gdalref/feature"
	"github.com/wgdzlh/gdalref/process"

	"go.uber.org/zap"
)

type indexedRecord struct {
	handle   int64
	fid      int64
	distance float64
}

// 按事件ID分组，保持首次出现顺序
type RecordIndex struct {
	order  []string
	groups map[string][]indexedRecord
}

func BuildIndex(fs []*feature.Feature) *RecordIndex {
	recs := make([]*feature.Feature, len(fs))
	copy(recs, fs)
	sort.SliceStable(recs, func(i, j int) bool {
		return asInt(recs[i].Attributes[FieldFid]) < asInt(recs[j].Attributes[FieldFid])
	})
	idx := &RecordIndex{groups: map[string][]indexedRecord{}}
	for _, f := range recs {
		id := asString(f.Attributes[FieldEventID])
		if _, ok := idx.groups[id]; !ok {
			idx.order = append(idx.order, id)
		}
		idx.groups[id] = append(idx.groups[id], indexedRecord{
			handle:   f.FID,
			fid:      asInt(f.Attributes[FieldFid]),
			distance: asFloat(f.Attributes[FieldDistanceLine]),
		})
	}
	return idx
}

// 单个事件ID的编辑：保留沿线最近与最远记录，删除其余
type GroupPlan struct {
	EventID string
	Start   int64
	End     int64
	Dispose []int64
}

// 记录数不少于2的事件ID的编辑计划，距离相同时保持写入顺序
func (idx *RecordIndex) Plan() (plans []GroupPlan) {
	for _, id := range idx.order {
		group := idx.groups[id]
		if id == NoEventID || len(group) < 2 {
			continue
		}
		sorted := make([]indexedRecord, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].distance < sorted[j].distance
		})
		p := GroupPlan{
			EventID: id,
			Start:   sorted[0].handle,
			End:     sorted[len(sorted)-1].handle,
		}
		for _, r := range sorted[1 : len(sorted)-1] {
			p.Dispose = append(p.Dispose, r.handle)
		}
		plans = append(plans, p)
	}
	return
}

type ConsolidateResult struct {
	Groups  int
	Deleted int
}

// 每个事件ID合并为Start与End两条记录，最后统一提交
func Consolidate(sink feature.EditableSink, fb process.Feedback) (res ConsolidateResult, err error) {
	fs, err := sink.Features()
	if err != nil {
		err = fmt.Errorf("read back output: %w", err)
		return
	}
	for _, p := range BuildIndex(fs).Plan() {
		var n int
		if len(p.Dispose) > 0 {
			if n, err = sink.DeleteFeatures(p.Dispose); err != nil {
				return
			}
		}
		if err = sink.ChangeAttributeValue(p.Start, FieldEventType, EventTypeStart); err != nil {
			return
		}
		if err = sink.ChangeAttributeValue(p.End, FieldEventType, EventTypeEnd); err != nil {
			return
		}
		fb.PushDebug("Clearing middle points", zap.String("event_id", p.EventID), zap.Int("deleted", n))
		res.Groups++
		res.Deleted += n
	}
	if err = sink.CommitChanges(); err != nil {
		err = fmt.Errorf("commit consolidation: %w", err)
	}
	return
}
