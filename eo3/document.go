package eo3

import (
	"fmt"
	"path/filepath"

	"github.com/sansa-eo/spot-eo3/crawl/extractor"
	"github.com/sansa-eo/spot-eo3/utils"
)

const (
	SchemaURL   = "https://schemas.opendatacube.org/dataset"
	ProductName = "spot"
	DefaultGrid = "default"
)

type Grid struct {
	Shape     [2]int     `json:"shape" yaml:"shape"`
	Transform [6]float64 `json:"transform" yaml:"transform"`
}

type Product struct {
	Name string `json:"name" yaml:"name"`
}

type Properties struct {
	Platform   string `json:"platform" yaml:"platform"`
	RegionCode string `json:"region_code" yaml:"region_code"`
	Datetime   string `json:"datetime" yaml:"datetime"`
}

type Measurement struct {
	Path string `json:"path" yaml:"path"`
	Band int    `json:"band" yaml:"band"`
}

// Measurements maps the four SPOT bands onto the bands of the single
// multi-band file. A struct keeps them in red, green, blue, nir order.
type Measurements struct {
	Red   Measurement `json:"red" yaml:"red"`
	Green Measurement `json:"green" yaml:"green"`
	Blue  Measurement `json:"blue" yaml:"blue"`
	NIR   Measurement `json:"nir" yaml:"nir"`
}

// Dataset is an EO3 dataset document.
type Dataset struct {
	Schema       string                 `json:"$schema" yaml:"$schema"`
	ID           string                 `json:"id" yaml:"id"`
	Label        string                 `json:"label" yaml:"label"`
	CRS          string                 `json:"crs" yaml:"crs"`
	Grids        map[string]Grid        `json:"grids" yaml:"grids"`
	Product      Product                `json:"product" yaml:"product"`
	Properties   Properties             `json:"properties" yaml:"properties"`
	Measurements Measurements           `json:"measurements" yaml:"measurements"`
	Lineage      map[string]interface{} `json:"lineage" yaml:"lineage"`
	Accessories  map[string]interface{} `json:"accessories" yaml:"accessories"`
}

func CRSString(epsg int) string {
	return fmt.Sprintf("epsg:%d", epsg)
}

// Assemble builds the dataset document for the raster at path. It
// fails with a raster error when the raster has no EPSG code, since an
// EO3 document without a CRS cannot be indexed.
func Assemble(path string, name *NameFields, info *extractor.RasterInfo) (*Dataset, error) {
	if !info.HasCRS() {
		return nil, utils.Errorf(utils.KindRaster, path, "no EPSG code for the raster's coordinate reference system")
	}

	stem := Stem(path)
	fileName := filepath.Base(path)
	band := func(n int) Measurement {
		return Measurement{Path: fileName, Band: n}
	}

	return &Dataset{
		Schema: SchemaURL,
		ID:     SpotDatasetID(stem).String(),
		Label:  stem,
		CRS:    CRSString(info.EPSG),
		Grids: map[string]Grid{
			DefaultGrid: {Shape: info.Shape(), Transform: info.Transform},
		},
		Product: Product{Name: ProductName},
		Properties: Properties{
			Platform:   name.Platform,
			RegionCode: name.RegionCode,
			Datetime:   name.Datetime(),
		},
		Measurements: Measurements{
			Red:   band(1),
			Green: band(2),
			Blue:  band(3),
			NIR:   band(4),
		},
		Lineage:     map[string]interface{}{},
		Accessories: map[string]interface{}{},
	}, nil
}
