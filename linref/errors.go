package linref

import "errors"

var (
	ErrAlignmentCount      = errors.New("alignment must hold exactly one feature, only one singlepart feature is allowed")
	ErrAlignmentMultipart  = errors.New("alignment has multipart geometry, convert the layer to single parts")
	ErrAlignmentGeographic = errors.New("alignment has geographic coordinate system, convert to planar system with units in feet")
	ErrAlignmentUnits      = errors.New("alignment has projection in other units than feet, convert to planar system with units in feet")
	ErrAlignmentNotLine    = errors.New("alignment geometry is not a line")
	ErrAlignmentVertices   = errors.New("alignment needs at least two vertices")
	ErrCrsMismatch         = errors.New("alignment CRS mismatch with event layer CRS")
	ErrInvalidEpsilon      = errors.New("epsilon must be -1 or a non-negative distance")
	ErrInvalidStation      = errors.New("station length must be positive")
	ErrSinkNotEditable     = errors.New("output sink does not support consolidation edits")
)

const (
	ErrAlignmentCountTemplate = `%w (got %d)`
	ErrCrsMismatchTemplate    = `%w: event layer %s has %s, alignment has %s`
)
