package extractor

// #include <stdio.h>
// #include <stdlib.h>
// #include <string.h>
// #include "gdal.h"
// #include "ogr_srs_api.h" /* for SRS calls */
// #include "cpl_string.h"
// #cgo pkg-config: gdal
//int getEPSG(const char *projWKT)
//{
//	OGRSpatialReferenceH hSRS;
//	const char *authName;
//	const char *authCode;
//	int epsg = 0;
//
//	if(projWKT == NULL || projWKT[0] == '\0') {
//		return 0;
//	}
//
//	hSRS = OSRNewSpatialReference(NULL);
//	if(OSRSetFromUserInput(hSRS, projWKT) != OGRERR_NONE) {
//		OSRDestroySpatialReference(hSRS);
//		return -1;
//	}
//
//	OSRAutoIdentifyEPSG(hSRS);
//	authName = OSRGetAuthorityName(hSRS, NULL);
//	authCode = OSRGetAuthorityCode(hSRS, NULL);
//	if(authName != NULL && authCode != NULL && strcmp(authName, "EPSG") == 0) {
//		epsg = atoi(authCode);
//	}
//
//	OSRDestroySpatialReference(hSRS);
//	return epsg;
//}
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/sansa-eo/spot-eo3/utils"
)

func init() {
	C.GDALAllRegister()
}

// ExtractRasterInfo opens path read-only and reads its CRS, pixel grid
// and geotransform. The GDAL handle is closed before returning.
func ExtractRasterInfo(path string) (*RasterInfo, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	C.CPLErrorReset()
	hDataset := C.GDALOpen(cPath, C.GA_ReadOnly)
	if hDataset == nil {
		msg := C.GoString(C.CPLGetLastErrorMsg())
		if msg == "" {
			msg = "GDAL could not open dataset"
		}
		return nil, utils.Errorf(utils.KindRaster, path, "%s", msg)
	}
	defer C.GDALClose(hDataset)

	hDriver := C.GDALGetDatasetDriver(hDataset)
	driverName := C.GoString(C.GDALGetDriverShortName(hDriver))

	projWkt := C.GDALGetProjectionRef(hDataset)
	epsg := int(C.getEPSG(projWkt))
	if epsg < 0 {
		return nil, utils.Errorf(utils.KindRaster, path, "could not interpret projection %q", C.GoString(projWkt))
	}

	dArr := [6]C.double{}
	// GDAL fills in (0, 1, 0, 0, 0, 1) when the raster is not georeferenced
	C.GDALGetGeoTransform(hDataset, &dArr[0])
	var geot [6]float64
	for i := range dArr {
		geot[i] = float64(dArr[i])
	}

	return &RasterInfo{
		FileName:  path,
		Driver:    driverName,
		EPSG:      epsg,
		Rows:      int(C.GDALGetRasterYSize(hDataset)),
		Cols:      int(C.GDALGetRasterXSize(hDataset)),
		BandCount: int(C.GDALGetRasterCount(hDataset)),
		Transform: AffineFromGeoTransform(geot),
	}, nil
}

// Reader adapts ExtractRasterInfo to the processor's raster reader.
type Reader struct{}

func (Reader) ReadRaster(path string) (*RasterInfo, error) {
	return ExtractRasterInfo(path)
}

func (ri *RasterInfo) String() string {
	return fmt.Sprintf("%s %dx%d epsg:%d", ri.Driver, ri.Rows, ri.Cols, ri.EPSG)
}
