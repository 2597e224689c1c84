package extractor

// RasterInfo is the subset of a raster's georeferencing needed to
// describe it as an EO3 dataset.
type RasterInfo struct {
	FileName  string
	Driver    string
	EPSG      int // 0 when the raster has no identifiable CRS
	Rows      int
	Cols      int
	BandCount int
	// Affine coefficients a, b, c, d, e, f such that
	// x = a*col + b*row + c and y = d*col + e*row + f.
	Transform [6]float64
}

func (ri *RasterInfo) HasCRS() bool {
	return ri.EPSG > 0
}

func (ri *RasterInfo) Shape() [2]int {
	return [2]int{ri.Rows, ri.Cols}
}

// AffineFromGeoTransform reorders a GDAL geotransform
// (c, a, b, f, d, e) into affine coefficient order.
func AffineFromGeoTransform(geot [6]float64) [6]float64 {
	return [6]float64{geot[1], geot[2], geot[0], geot[4], geot[5], geot[3]}
}

// GeoTransformFromAffine is the inverse of AffineFromGeoTransform.
func GeoTransformFromAffine(aff [6]float64) [6]float64 {
	return [6]float64{aff[2], aff[0], aff[1], aff[5], aff[3], aff[4]}
}
