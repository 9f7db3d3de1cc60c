package gdalref

const (
	FILE_EXT_SHP     = ".shp"
	FILE_EXT_GPKG    = ".gpkg"
	FILE_EXT_GEOJSON = ".geojson"
	FILE_EXT_JSON    = ".json"
	FILE_EXT_CSV     = ".csv"

	SHP_DRIVER_NAME     = "ESRI Shapefile"
	GPKG_DRIVER_NAME    = "GPKG"
	GEOJSON_DRIVER_NAME = "GeoJSON"
	CSV_DRIVER_NAME     = "CSV"
	MEM_DRIVER_NAME     = "Memory"

	SHAPE_ENCODING  = "UTF-8"
	ENCODING_OPTION = "ENCODING=" + SHAPE_ENCODING
	CSV_GEOM_OPTION = "GEOMETRY=AS_WKT"
	GPKG_FID_OPTION = "FID=ogc_fid" // 让出fid列名给属性字段
	SHAPE_ENC_KEY   = "SHAPE_ENCODING"

	// 数据源与图层名之间的分隔符，如 roads.gpkg|centerline
	LAYER_SEPARATOR = "|"

	CGCS2000_SRID = 4490
)

var drivers = map[string]string{
	FILE_EXT_SHP:     SHP_DRIVER_NAME,
	FILE_EXT_GPKG:    GPKG_DRIVER_NAME,
	FILE_EXT_GEOJSON: GEOJSON_DRIVER_NAME,
	FILE_EXT_JSON:    GEOJSON_DRIVER_NAME,
	FILE_EXT_CSV:     CSV_DRIVER_NAME,
}

// 新建图层只写、不支持回读与删除的驱动，先写入内存图层，Close时再复制到目标文件
var stagedDrivers = map[string]bool{
	GEOJSON_DRIVER_NAME: true,
	CSV_DRIVER_NAME:     true,
}
