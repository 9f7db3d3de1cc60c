package feature

import "errors"

var (
	ErrEmptyGeometry    = errors.New("feature: empty geometry")
	ErrUnsupportedGeom  = errors.New("feature: unsupported geometry type")
	ErrFeatureNotFound  = errors.New("feature: no feature with fid")
	ErrFieldNotInSchema = errors.New("feature: field not in sink schema")
	ErrSinkClosed       = errors.New("feature: sink closed")
)
