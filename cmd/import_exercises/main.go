package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/gymlog/internal/config"
	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/gym/catalog"
	"github.com/2beens/gymlog/internal/imagestore"
	"github.com/2beens/gymlog/internal/logging"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const imageDownloadTimeout = 10 * time.Second

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <exercises.json>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := run(ctx, *env, *configPath, flag.Arg(0), os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context, env, configPath, dataPath string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %s\n", err)
		return 1
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	dataFile, err := os.Open(dataPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error reading %s: %s\n", dataPath, err)
		return 1
	}
	defer dataFile.Close()

	records, err := catalog.LoadRecords(dataFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error parsing %s: %s\n", dataPath, err)
		return 1
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("GYMLOG_DB_PASS"),
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Database error: %s\n", err)
		return 1
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Database error: %s\n", err)
		return 1
	}

	var images imagestore.Store
	if cfg.ImagesBackend == config.ImagesBackendGCS {
		bucketStore, err := imagestore.NewBucketStore(ctx, cfg.ImagesBucket)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Image store error: %s\n", err)
			return 1
		}
		defer func() {
			if err := bucketStore.Close(); err != nil {
				log.Errorf("close bucket store: %s", err)
			}
		}()
		images = bucketStore
	} else {
		diskStore, err := imagestore.NewDiskStore(cfg.ImagesRootPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Image store error: %s\n", err)
			return 1
		}
		images = diskStore
	}

	httpClient := &http.Client{
		Timeout:   imageDownloadTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	importer := catalog.NewImporter(catalog.NewRepo(dbPool), images, httpClient, stdout, stderr)
	stats, err := importer.Run(ctx, records)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Import interrupted after %d of %d exercises: %s\n", stats.Imported+stats.Skipped, stats.Total, err)
		return 1
	}

	log.Debugf("import done: imported=%d skipped=%d images=%d", stats.Imported, stats.Skipped, stats.Images)
	return 0
}
