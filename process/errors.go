package process

import "errors"

var (
	ErrMissingParam   = errors.New("missing required parameter")
	ErrInvalidParam   = errors.New("invalid parameter value")
	ErrInvalidSource  = errors.New("invalid source")
	ErrInvalidSink    = errors.New("invalid sink")
	ErrNoReprojection = errors.New("reprojection is not available")
	ErrLayerNotFound  = errors.New("layer not found")
	ErrNoServices     = errors.New("no services to resolve destination")
)

const (
	ErrInvalidSourceTemplate = `could not load source layer for %s: %w`
	ErrInvalidSinkTemplate   = `could not create destination layer for %s: %w`
)
