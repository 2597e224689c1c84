package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sansa-eo/spot-eo3/crawl/extractor"
	"github.com/sansa-eo/spot-eo3/eo3"
	"github.com/sansa-eo/spot-eo3/index"
	"github.com/sansa-eo/spot-eo3/metrics"
	"github.com/sansa-eo/spot-eo3/processor"
	"github.com/sansa-eo/spot-eo3/utils"
)

const envPrefix = "SPOT_EO3_"

// Matches the timestamps of the original Python tool.
const logTimestampFormat = "01/02/2006 03:04:05"

type options struct {
	pattern   string
	format    string
	keepGoing bool
	database  string
	logLevel  string
}

func envString(name, defaultVal string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		return v
	}
	return defaultVal
}

func envBool(name string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: logTimestampFormat,
	})
	return log, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "spot-eo3 <input_directory>",
		Short: "Write EO3 dataset documents for SPOT PCIDSK rasters",
		Long: `spot-eo3 scans input_directory (not recursively) for *.pix files and
writes an Open Data Cube EO3 dataset document next to each one, named
<stem>.odc-dataset.json.

Flags may also be set through SPOT_EO3_<FLAG> environment variables
(e.g. SPOT_EO3_KEEP_GOING=true) or a .env file in the working directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return run(ctx, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.pattern, "pattern", envString("PATTERN", ""), "additional filter expression over the path and name variables, e.g. \"name =~ '^S7-'\"")
	flags.StringVar(&opts.format, "format", envString("FORMAT", string(eo3.FormatJSON)), "document format: json or yaml")
	flags.BoolVar(&opts.keepGoing, "keep-going", envBool("KEEP_GOING", false), "log and skip files that fail instead of stopping")
	flags.StringVar(&opts.database, "database", envString("DATABASE", ""), "PostgreSQL connection string; when set every document is also indexed")
	flags.StringVar(&opts.logLevel, "log-level", envString("LOG_LEVEL", "info"), "log level: debug, info, warn or error")

	return cmd
}

func run(ctx context.Context, inputDir string, opts *options) error {
	log, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}

	format, err := eo3.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	utils.InitGdal()

	pipeline := processor.InitEO3Pipeline(log, extractor.Reader{})
	pipeline.Pattern = opts.pattern
	pipeline.Format = format
	pipeline.KeepGoing = opts.keepGoing
	pipeline.Metrics = metrics.NewLogrusLogger(log)

	if strings.TrimSpace(opts.database) != "" {
		catalogue, err := index.Open(ctx, opts.database)
		if err != nil {
			return err
		}
		defer catalogue.Close()
		pipeline.Indexer = catalogue
	}

	_, err = pipeline.Process(ctx, inputDir)
	return err
}

func main() {
	// a missing .env is not an error
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "spot-eo3 failed:", err)
		os.Exit(1)
	}
}
