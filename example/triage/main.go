package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/kisun-bit/disktriage/analysis"
	"github.com/kisun-bit/disktriage/crypto"
	"github.com/kisun-bit/disktriage/crypto/heuristic"
	"github.com/kisun-bit/disktriage/crypto/signature"
	"github.com/kisun-bit/disktriage/disk/source"
	"github.com/kisun-bit/disktriage/metadata"
	"github.com/kisun-bit/disktriage/report"
	"github.com/kisun-bit/disktriage/util/basic"
	"github.com/kisun-bit/disktriage/util/logger"
)

var (
	srcPath       = flag.String("source", "", "block device or disk image to analyze")
	listDisks     = flag.Bool("list-disks", false, "list local physical disks and exit")
	catalogPath   = flag.String("catalog", "", "signature catalog JSON (builtin catalog if empty)")
	sigIDs        = flag.String("signatures", "", "comma-separated signature ids to restrict the active set")
	volIndexes    = flag.String("volumes", "", "comma-separated volume indexes to analyze (all if empty)")
	heurPath      = flag.String("heuristic-config", "", "heuristic threshold JSON (defaults if empty)")
	inventoryMode = flag.Bool("inventory", false, "signature-only mode, skip entropy heuristics")
	scanMeta      = flag.Bool("scan-metadata", true, "collect file/directory metadata from recognized filesystems")
	depthLimit    = flag.Int("depth", metadata.DepthUnlimited, "metadata scan depth, 0 for top-level only, -1 unlimited")
	workers       = flag.Int("workers", 0, "volume-level parallelism, 0 for logical core count")
	volTimeout    = flag.Duration("volume-timeout", 0, "per-volume analysis timeout, 0 for none")
	outPath       = flag.String("output", "", "report file path (stdout if empty)")
	outFormat     = flag.String("format", "json", "report format: json, csv or files-csv")
	pprofPort     = flag.Int("pprof-port", 0, "pprof debug server port, 0 to disable")
)

func main() {
	flag.Parse()

	if *pprofPort > 0 {
		go basic.StartPProfServe(*pprofPort)
	}
	if *listDisks {
		listPhysicalDisks()
		return
	}
	if *srcPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := analysis.NewManager().Run(ctx, analysis.Request{
		SourcePath:    *srcPath,
		Chain:         buildChain(),
		ScanMetadata:  *scanMeta,
		ScanOptions:   metadata.Options{DepthLimit: *depthLimit, Workers: *workers},
		VolumeIndexes: parseVolumeIndexes(),
		Workers:       *workers,
		VolumeTimeout: *volTimeout,
		Observer:      analysis.LogObserver{},
	})
	if err != nil {
		logger.Fatalf("analysis failed: %v", err)
	}
	logger.Infof("analysis summary: %s", report.Summary(rep))

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			logger.Fatalf("create report file: %v", err)
		}
		defer func() {
			_ = out.Close()
		}()
	}

	switch *outFormat {
	case "json":
		err = report.ExportJSON(out, rep)
	case "csv":
		err = report.ExportVolumesCSV(out, rep)
	case "files-csv":
		err = report.ExportFilesCSV(out, rep)
	default:
		logger.Fatalf("unsupported report format %q", *outFormat)
	}
	if err != nil {
		logger.Fatalf("export report: %v", err)
	}
}

// buildChain 按命令行参数装配检测链. 目录或阈值配置非法时直接退出,
// 带着错误的检测参数继续跑只会产出误导性的结论.
func buildChain() crypto.DetectionChain {
	chain := crypto.NewDetectionChain()
	chain.SkipHeuristics = *inventoryMode

	if *catalogPath != "" {
		raw, err := os.ReadFile(*catalogPath)
		if err != nil {
			logger.Fatalf("read signature catalog: %v", err)
		}
		chain.Catalog, err = signature.LoadCatalog(raw)
		if err != nil {
			logger.Fatalf("load signature catalog: %v", err)
		}
	}
	if *sigIDs != "" {
		ids := strings.Split(*sigIDs, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		chain.Catalog = chain.Catalog.Filter(ids...)
		logger.Infof("active signature set restricted to %d definitions", chain.Catalog.Len())
	}
	if *heurPath != "" {
		raw, err := os.ReadFile(*heurPath)
		if err != nil {
			logger.Fatalf("read heuristic config: %v", err)
		}
		chain.Config, err = heuristic.LoadConfig(raw)
		if err != nil {
			logger.Fatalf("load heuristic config: %v", err)
		}
	}
	return chain
}

func parseVolumeIndexes() []int {
	if *volIndexes == "" {
		return nil
	}
	indexes := make([]int, 0)
	for _, part := range strings.Split(*volIndexes, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			logger.Fatalf("invalid volume index %q", part)
		}
		indexes = append(indexes, idx)
	}
	return indexes
}

func listPhysicalDisks() {
	disks, err := source.EnumPhysicalDisks()
	if err != nil {
		logger.Fatalf("enumerate physical disks: %v", err)
	}
	for _, d := range disks {
		logger.Infof("%s", d.Repr())
	}
	if len(disks) == 0 {
		logger.Warnf("no physical disks found")
	}
}
