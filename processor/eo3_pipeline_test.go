package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sansa-eo/spot-eo3/crawl/extractor"
	"github.com/sansa-eo/spot-eo3/eo3"
	"github.com/sansa-eo/spot-eo3/utils"
)

const spotName = "S6-E29S27-20140316-075045-P-SEN-SPOT6_20200221_102757z1uilvbwxvx8_1_ORTHO_PSH.pix"

type fakeReader struct {
	infos map[string]*extractor.RasterInfo
	reads []string
}

func (r *fakeReader) ReadRaster(path string) (*extractor.RasterInfo, error) {
	r.reads = append(r.reads, path)
	info, ok := r.infos[filepath.Base(path)]
	if !ok {
		return nil, utils.Errorf(utils.KindRaster, path, "not a supported raster")
	}
	return info, nil
}

func spotInfo() *extractor.RasterInfo {
	return &extractor.RasterInfo{
		Driver:    "PCIDSK",
		EPSG:      32735,
		Rows:      4000,
		Cols:      4000,
		BandCount: 4,
		Transform: [6]float64{1, 0, 0, 0, 1, 0},
	}
}

type recordingIndexer struct {
	paths []string
	err   error
}

func (ri *recordingIndexer) Index(ctx context.Context, doc *eo3.Dataset, sidecarPath string) error {
	ri.paths = append(ri.paths, sidecarPath)
	return ri.err
}

func newTestPipeline(reader RasterReader) *EO3Pipeline {
	log, _ := test.NewNullLogger()
	return InitEO3Pipeline(log, reader)
}

func writeInputs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("raster"), 0644))
	}
}

func sidecars(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.odc-*"))
	require.NoError(t, err)
	sort.Strings(matches)
	return matches
}

func TestProcessSpotScene(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName, "notes.txt")
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}

	info, err := newTestPipeline(reader).Process(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, info.NumScanned)
	assert.Equal(t, 1, info.NumWritten)
	assert.Equal(t, 0, info.NumFailed())

	out := filepath.Join(dir, "S6-E29S27-20140316-075045-P-SEN-SPOT6_20200221_102757z1uilvbwxvx8_1_ORTHO_PSH.odc-dataset.json")
	assert.Equal(t, []string{out}, sidecars(t, dir))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc, err := eo3.Decode(data, eo3.FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "S6", doc.Properties.Platform)
	assert.Equal(t, "E29S27", doc.Properties.RegionCode)
	assert.Equal(t, "2014-03-16T075045", doc.Properties.Datetime)
	assert.Equal(t, "epsg:32735", doc.CRS)
	assert.Equal(t, [2]int{4000, 4000}, doc.Grids["default"].Shape)
	for i, m := range []eo3.Measurement{doc.Measurements.Red, doc.Measurements.Green, doc.Measurements.Blue, doc.Measurements.NIR} {
		assert.Equal(t, eo3.Measurement{Path: spotName, Band: i + 1}, m)
	}
}

func TestProcessEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	reader := &fakeReader{}

	info, err := newTestPipeline(reader).Process(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, info.NumScanned)
	assert.Empty(t, reader.reads)
	assert.Empty(t, sidecars(t, dir))
}

func TestProcessMissingDirectory(t *testing.T) {
	_, err := newTestPipeline(&fakeReader{}).Process(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, utils.KindDirectory, utils.KindOf(err))
}

func TestProcessIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}
	p := newTestPipeline(reader)

	_, err := p.Process(context.Background(), dir)
	require.NoError(t, err)
	out := sidecars(t, dir)
	require.Len(t, out, 1)
	first, err := os.ReadFile(out[0])
	require.NoError(t, err)

	_, err = p.Process(context.Background(), dir)
	require.NoError(t, err)
	second, err := os.ReadFile(out[0])
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessAbortsOnBadFilename(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, "S6-E29S27.pix")
	reader := &fakeReader{}

	info, err := newTestPipeline(reader).Process(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, utils.KindFilename, utils.KindOf(err))
	assert.Equal(t, 1, info.NumFailed())
	assert.Empty(t, reader.reads)
	assert.Empty(t, sidecars(t, dir))
}

func TestProcessAbortsOnRasterError(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)

	_, err := newTestPipeline(&fakeReader{}).Process(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, utils.KindRaster, utils.KindOf(err))
	assert.Empty(t, sidecars(t, dir))
}

func TestProcessKeepGoing(t *testing.T) {
	dir := t.TempDir()
	bad := "S7-E30S27-20150101-999999-P.pix"
	unreadable := "S7-E30S27-20150101-101010-P.pix"
	writeInputs(t, dir, spotName, bad, unreadable)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}

	log, hook := test.NewNullLogger()
	p := InitEO3Pipeline(log, reader)
	p.KeepGoing = true

	info, err := p.Process(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files failed")
	assert.Equal(t, 3, info.NumScanned)
	assert.Equal(t, 1, info.NumWritten)

	kinds := map[string]utils.ErrorKind{}
	for _, f := range info.Failures {
		kinds[filepath.Base(f.Path)] = f.Kind
	}
	assert.Equal(t, map[string]utils.ErrorKind{bad: utils.KindFilename, unreadable: utils.KindRaster}, kinds)
	assert.Len(t, sidecars(t, dir), 1)

	skipped := 0
	for _, e := range hook.AllEntries() {
		if e.Data["error"] != nil {
			skipped++
		}
	}
	assert.Equal(t, 2, skipped)
}

func TestProcessLeavesEarlierSidecarsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}
	p := newTestPipeline(reader)

	_, err := p.Process(context.Background(), dir)
	require.NoError(t, err)

	writeInputs(t, dir, "broken.pix")
	_, err = p.Process(context.Background(), dir)
	require.Error(t, err)
	assert.Len(t, sidecars(t, dir), 1)
}

func TestProcessYAML(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}
	p := newTestPipeline(reader)
	p.Format = eo3.FormatYAML

	_, err := p.Process(context.Background(), dir)
	require.NoError(t, err)

	out := sidecars(t, dir)
	require.Len(t, out, 1)
	assert.Equal(t, eo3.SidecarPath(filepath.Join(dir, spotName), eo3.FormatYAML), out[0])
}

func TestProcessPattern(t *testing.T) {
	dir := t.TempDir()
	other := "S7-E30S27-20150101-101010-P.pix"
	writeInputs(t, dir, spotName, other)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo(), other: spotInfo()}}
	p := newTestPipeline(reader)
	p.Pattern = "name =~ '^S6-'"

	info, err := p.Process(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, info.NumWritten)
	assert.Equal(t, []string{filepath.Join(dir, spotName)}, reader.reads)
}

func TestProcessIndexes(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}
	indexer := &recordingIndexer{}
	p := newTestPipeline(reader)
	p.Indexer = indexer

	info, err := p.Process(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, info.NumIndexed)
	assert.Equal(t, []string{eo3.SidecarPath(filepath.Join(dir, spotName), eo3.FormatJSON)}, indexer.paths)
}

func TestProcessIndexFailure(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)
	reader := &fakeReader{infos: map[string]*extractor.RasterInfo{spotName: spotInfo()}}
	p := newTestPipeline(reader)
	p.Indexer = &recordingIndexer{err: utils.Errorf(utils.KindIndex, "", "connection refused")}

	info, err := p.Process(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, utils.KindIndex, utils.KindOf(err))
	assert.Equal(t, 1, info.NumWritten)
	assert.Equal(t, 0, info.NumIndexed)
}

func TestProcessCancelled(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir, spotName)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(&fakeReader{}).Process(ctx, dir)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, sidecars(t, dir))
}

func TestProcessGDALRaster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, spotName)
	transform := [6]float64{1.5, 0, 600000, 0, -1.5, 7000000}
	require.NoError(t, extractor.CreateFixture(path, "PCIDSK", 20, 30, 4, 32735, transform))

	_, err := newTestPipeline(extractor.Reader{}).Process(context.Background(), dir)
	require.NoError(t, err)

	data, err := os.ReadFile(eo3.SidecarPath(path, eo3.FormatJSON))
	require.NoError(t, err)
	doc, err := eo3.Decode(data, eo3.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "epsg:32735", doc.CRS)
	assert.Equal(t, [2]int{20, 30}, doc.Grids["default"].Shape)
	assert.Equal(t, transform, doc.Grids["default"].Transform)
}
