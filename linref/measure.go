package linref

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

// 默认桩号间距
const DefaultStation = 100.0

func segmentLength(a, b geom.Coord) float64 {
	return math.Hypot(a.X()-b.X(), a.Y()-b.Y())
}

// 沿线里程：累加indexBefore之前的整段，再加vertices[indexBefore]到point的距离。indexBefore<1时从0号顶点起算，越界时截到末顶点
func MeasureAlongLine(vertices []geom.Coord, indexBefore int, point geom.Coord) (distance float64) {
	if len(vertices) == 0 {
		return
	}
	if indexBefore > len(vertices)-1 {
		indexBefore = len(vertices) - 1
	}
	for i := 0; i < indexBefore; i++ {
		distance += segmentLength(vertices[i], vertices[i+1])
	}
	from := vertices[0]
	if indexBefore >= 1 {
		from = vertices[indexBefore]
	}
	distance += segmentLength(from, point)
	return
}

// 里程格式化为桩号，如1234按100得"12+34"，余数四舍六入五成双
func FormatStation(distance, modulo float64) string {
	whole := math.Floor(distance / modulo)
	rest := math.RoundToEven(math.Mod(distance, modulo))
	return fmt.Sprintf("%d+%d", int64(whole), int64(rest))
}
