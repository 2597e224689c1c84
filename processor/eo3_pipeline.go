package processor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sansa-eo/spot-eo3/crawl"
	"github.com/sansa-eo/spot-eo3/crawl/extractor"
	"github.com/sansa-eo/spot-eo3/eo3"
	"github.com/sansa-eo/spot-eo3/metrics"
)

type RasterReader interface {
	ReadRaster(path string) (*extractor.RasterInfo, error)
}

// Indexer receives every document after its sidecar has been written.
type Indexer interface {
	Index(ctx context.Context, doc *eo3.Dataset, sidecarPath string) error
}

// EO3Pipeline turns every matching raster in a directory into an EO3
// sidecar document. Files are processed one at a time in the order the
// directory listing yields them.
type EO3Pipeline struct {
	Log     logrus.FieldLogger
	Reader  RasterReader
	Glob    string
	Pattern string
	Format  eo3.Format
	// KeepGoing logs and skips files that fail instead of aborting the
	// run at the first failure.
	KeepGoing bool
	Indexer   Indexer
	Metrics   metrics.Logger
}

func InitEO3Pipeline(log logrus.FieldLogger, reader RasterReader) *EO3Pipeline {
	return &EO3Pipeline{
		Log:    log,
		Reader: reader,
		Glob:   crawl.DefaultGlob,
		Format: eo3.FormatJSON,
	}
}

// Process scans inputDir and writes a sidecar for each file found. A
// directory error always aborts. Other errors abort unless KeepGoing is
// set, in which case the run finishes and reports how many files failed.
func (p *EO3Pipeline) Process(ctx context.Context, inputDir string) (*metrics.RunInfo, error) {
	p.Log.Infof("Starting up, searching in %s", inputDir)

	collector := metrics.NewRunCollector(inputDir, p.Metrics)
	defer collector.Log()

	scanner, err := crawl.NewScanner(inputDir, p.Glob, p.Pattern)
	if err != nil {
		return collector.Info, err
	}
	defer scanner.Close()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return collector.Info, err
		}

		inFile := scanner.Path()
		collector.Info.NumScanned++
		p.Log.Infof("Processing %s", inFile)

		doc, err := p.ProcessFile(inFile)
		if err == nil {
			collector.Info.NumWritten++
			err = p.index(ctx, doc, inFile)
			if err == nil && p.Indexer != nil {
				collector.Info.NumIndexed++
			}
		}
		if err != nil {
			collector.Fail(inFile, err)
			if !p.KeepGoing {
				return collector.Info, err
			}
			p.Log.WithError(err).Errorf("Skipping %s", inFile)
		}
	}
	if err := scanner.Err(); err != nil {
		return collector.Info, err
	}

	p.Log.Infof("Finished, %d of %d files written", collector.Info.NumWritten, collector.Info.NumScanned)
	if n := collector.Info.NumFailed(); n > 0 {
		return collector.Info, fmt.Errorf("%d of %d files failed", n, collector.Info.NumScanned)
	}
	return collector.Info, nil
}

// ProcessFile builds the document for one raster and writes its sidecar.
func (p *EO3Pipeline) ProcessFile(inFile string) (*eo3.Dataset, error) {
	nameFields, err := eo3.ParseName(eo3.Stem(inFile))
	if err != nil {
		return nil, err
	}

	info, err := p.Reader.ReadRaster(inFile)
	if err != nil {
		return nil, err
	}

	doc, err := eo3.Assemble(inFile, nameFields, info)
	if err != nil {
		return nil, err
	}

	p.Log.Infof("Finished processing file %s, writing %s", inFile, p.Format)
	if _, err := eo3.WriteSidecar(inFile, doc, p.Format); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *EO3Pipeline) index(ctx context.Context, doc *eo3.Dataset, inFile string) error {
	if p.Indexer == nil {
		return nil
	}
	return p.Indexer.Index(ctx, doc, eo3.SidecarPath(inFile, p.Format))
}
