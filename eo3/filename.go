package eo3

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/sansa-eo/spot-eo3/utils"
)

const (
	nameSeparator  = "-"
	nameTimeLayout = "20060102150405"
	// DatetimeLayout is how acquisition times are written to the
	// document, e.g. 2014-03-16T075045.
	DatetimeLayout = "2006-01-02T150405"
)

// NameFields are the values encoded in a SPOT delivery file name such
// as S6-E29S27-20140316-075045-P-SEN-SPOT6_..._ORTHO_PSH.pix.
type NameFields struct {
	Platform   string
	RegionCode string
	Acquired   time.Time
}

func (nf *NameFields) Datetime() string {
	return nf.Acquired.Format(DatetimeLayout)
}

// Stem strips the directory and the final extension from path.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseName splits a file stem on '-' into platform, region code and
// acquisition time. The stem needs at least four fields and the third
// and fourth must form a YYYYMMDDHHMMSS timestamp.
func ParseName(stem string) (*NameFields, error) {
	fields := strings.Split(stem, nameSeparator)
	if len(fields) < 4 {
		return nil, utils.Errorf(utils.KindFilename, stem, "expected at least 4 '%s' separated fields, found %d", nameSeparator, len(fields))
	}

	acquired, err := time.ParseInLocation(nameTimeLayout, fields[2]+fields[3], time.UTC)
	if err != nil {
		return nil, utils.Errorf(utils.KindFilename, stem, "invalid acquisition time %q: %v", fields[2]+fields[3], err)
	}

	return &NameFields{
		Platform:   fields[0],
		RegionCode: fields[1],
		Acquired:   acquired,
	}, nil
}
