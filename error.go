package gdalref

import "errors"

var (
	ErrGdalDriverCreate    = errors.New("gdal driver create err")
	ErrGdalDriverOpen      = errors.New("gdal driver open err")
	ErrGdalLayerMissing    = errors.New("gdal layer not found in datasource")
	ErrGdalLayerCreate     = errors.New("gdal layer create err")
	ErrGdalWrongGeoType    = errors.New("gdal wrong geo type")
	ErrGdalUnsupportedFile = errors.New("gdal unsupported file extension")
	ErrGdalDestExists      = errors.New("gdal destination already exists")
	ErrGdalFeatureMissing  = errors.New("gdal feature not found")
	ErrVoidSrid            = errors.New("gdal datasource with void srid")
	ErrInvalidCRS          = errors.New("invalid CRS")
)
