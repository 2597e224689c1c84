package utils

// #include "gdal.h"
// #include "gdal_frmts.h"
// #cgo pkg-config: gdal
import "C"

import (
	"os"
)

// InitGdal sets the GDAL defaults the sidecar generator relies on and
// registers the drivers. Values already present in the environment win.
func InitGdal() {
	// .aux.xml files must not appear next to the inputs
	setDefaultEnv("GDAL_PAM_ENABLED", "NO")
	setDefaultEnv("GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR")
	setDefaultEnv("GDAL_MAX_DATASET_POOL_SIZE", "10")

	registerGDALDrivers()
}

func setDefaultEnv(envVar string, defaultVal string) {
	if _, ok := os.LookupEnv(envVar); !ok {
		os.Setenv(envVar, defaultVal)
	}
}

func registerGDALDrivers() {
	// Drivers are interrogated in a linear scan on open, so the formats
	// we read are moved to the front of the list.
	var havePCIDSK, haveGTiff bool

	C.GDALAllRegister()
	for i := 0; i < int(C.GDALGetDriverCount()); i++ {
		driver := C.GDALGetDriver(C.int(i))
		switch C.GoString(C.GDALGetDriverShortName(driver)) {
		case "PCIDSK":
			havePCIDSK = true
		case "GTiff":
			haveGTiff = true
		}
	}

	for C.GDALGetDriverCount() > 0 {
		C.GDALDeregisterDriver(C.GDALGetDriver(0))
	}

	if havePCIDSK {
		C.GDALRegister_PCIDSK()
	}
	if haveGTiff {
		C.GDALRegister_GTiff()
	}
	C.GDALAllRegister()
}
