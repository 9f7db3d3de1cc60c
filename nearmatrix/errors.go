package nearmatrix

import "errors"

var (
	ErrFieldMissing = errors.New("field not found in layer")
)

const (
	ErrFieldMissingTemplate = `%w: %s has no field %q`
)
