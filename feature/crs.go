package feature

import (
	"math"
	"strconv"
	"strings"
)

// 坐标系线性单位
type Unit int

const (
	UnitUnknown Unit = iota
	UnitFeet
	UnitMeters
	UnitDegrees
)

const (
	footInMeters       = 0.3048
	usSurveyFootMeters = 1200.0 / 3937.0
	unitTolerance      = 1e-7
)

func (u Unit) String() string {
	switch u {
	case UnitFeet:
		return "feet"
	case UnitMeters:
		return "meters"
	case UnitDegrees:
		return "degrees"
	}
	return "unknown"
}

// 按单位名称与米制换算系数判断单位，国际英尺与美国测量英尺均为英尺
func UnitFromLinear(name string, toMeters float64) Unit {
	switch {
	case math.Abs(toMeters-footInMeters) < unitTolerance,
		math.Abs(toMeters-usSurveyFootMeters) < unitTolerance:
		return UnitFeet
	case math.Abs(toMeters-1) < unitTolerance:
		return UnitMeters
	}
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "foot"), strings.Contains(n, "feet"), n == "ft", n == "us-ft":
		return UnitFeet
	case strings.HasPrefix(n, "met"), n == "m":
		return UnitMeters
	case strings.HasPrefix(n, "deg"):
		return UnitDegrees
	}
	return UnitUnknown
}

// 坐标系；无EPSG编码时Srid为0
type CRS struct {
	Srid       int
	Wkt        string
	Geographic bool
	Units      Unit
}

// 两端Srid均已知时按Srid比较，否则比较WKT
func (c CRS) Equal(o CRS) bool {
	if c.Srid > 0 && o.Srid > 0 {
		return c.Srid == o.Srid
	}
	if c.Srid > 0 || o.Srid > 0 {
		return false
	}
	return strings.TrimSpace(c.Wkt) == strings.TrimSpace(o.Wkt)
}

func (c CRS) AuthID() string {
	if c.Srid > 0 {
		return "EPSG:" + strconv.Itoa(c.Srid)
	}
	if c.Wkt == "" {
		return "unknown"
	}
	return "custom"
}

func (c CRS) String() string {
	return c.AuthID()
}
