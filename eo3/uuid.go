package eo3

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Namespace under which Open Data Cube derives dataset ids.
var odcNamespace = uuid.MustParse("6f34c6f4-13d6-43c0-8e4e-42b6c13203af")

const (
	Algorithm        = "sansa-spot"
	AlgorithmVersion = "1.0.0"
)

// DatasetID derives a name-based (version 5) UUID from the algorithm,
// its version and the sources a dataset was made from. Sources and
// tags are sorted first, so the id only depends on their contents. The
// derivation matches odc_uuid in odc-tools, so documents agree with
// ones produced by the Python tooling.
func DatasetID(algorithm, version string, sources []string, tags map[string]string) uuid.UUID {
	tagList := make([]string, 0, len(tags))
	for k, v := range tags {
		tagList = append(tagList, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(tagList)

	srcs := append([]string(nil), sources...)
	sort.Strings(srcs)

	parts := []string{algorithm, version, ""}
	parts = append(parts, tagList...)
	parts = append(parts, srcs...)
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}

	return uuid.NewSHA1(odcNamespace, []byte(strings.Join(parts, "\n")))
}

// SpotDatasetID is the id of the dataset generated from the file with
// the given stem.
func SpotDatasetID(stem string) uuid.UUID {
	return DatasetID(Algorithm, AlgorithmVersion, []string{stem}, nil)
}
