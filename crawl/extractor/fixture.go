package extractor

// #include <stdlib.h>
// #include <string.h>
// #include "gdal.h"
// #include "ogr_srs_api.h"
// #include "cpl_conv.h"
// #cgo pkg-config: gdal
//char *getEPSGWkt(int epsg)
//{
//	OGRSpatialReferenceH hSRS;
//	char *pszWkt = NULL;
//	char *result;
//
//	hSRS = OSRNewSpatialReference(NULL);
//	if(OSRImportFromEPSG(hSRS, epsg) != OGRERR_NONE ||
//	   OSRExportToWkt(hSRS, &pszWkt) != OGRERR_NONE) {
//		OSRDestroySpatialReference(hSRS);
//		return NULL;
//	}
//
//	result = strdup(pszWkt);
//	CPLFree(pszWkt);
//	OSRDestroySpatialReference(hSRS);
//	return result;
//}
import "C"

import (
	"fmt"
	"unsafe"
)

// CreateFixture writes an empty Byte raster through the named GDAL
// driver (e.g. "PCIDSK", "GTiff"). It is used to build test inputs.
// An epsg of 0 leaves the raster without a projection.
func CreateFixture(path string, driver string, rows, cols, bands, epsg int, transform [6]float64) error {
	cDriver := C.CString(driver)
	defer C.free(unsafe.Pointer(cDriver))
	hDriver := C.GDALGetDriverByName(cDriver)
	if hDriver == nil {
		return fmt.Errorf("GDAL driver %s is not available", driver)
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	C.CPLErrorReset()
	hDataset := C.GDALCreate(hDriver, cPath, C.int(cols), C.int(rows), C.int(bands), C.GDT_Byte, nil)
	if hDataset == nil {
		return fmt.Errorf("GDAL could not create %s: %s", path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	defer C.GDALClose(hDataset)

	geot := GeoTransformFromAffine(transform)
	dArr := [6]C.double{}
	for i := range geot {
		dArr[i] = C.double(geot[i])
	}
	if C.GDALSetGeoTransform(hDataset, &dArr[0]) != C.CE_None {
		return fmt.Errorf("GDAL could not set geotransform on %s", path)
	}

	if epsg > 0 {
		cWkt := C.getEPSGWkt(C.int(epsg))
		if cWkt == nil {
			return fmt.Errorf("unknown EPSG code %d", epsg)
		}
		defer C.free(unsafe.Pointer(cWkt))
		if C.GDALSetProjection(hDataset, cWkt) != C.CE_None {
			return fmt.Errorf("GDAL could not set projection on %s", path)
		}
	}
	return nil
}
