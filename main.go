package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riadafridishibly/xmldedup/cleaner"
	"github.com/riadafridishibly/xmldedup/console"
	"github.com/riadafridishibly/xmldedup/scanner"
)

func tempDir() string {
	if runtime.GOOS == "darwin" {
		return "/tmp"
	}
	return os.TempDir()
}

func newLogger() (*zap.Logger, string) {
	logFile, err := os.CreateTemp(tempDir(), "xmldedup-*.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
		return zap.NewNop(), ""
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.DebugLevel,
	)
	return zap.New(core, zap.AddCaller()).Named("xmldedup"), logFile.Name()
}

func main() {
	logger, logPath := newLogger()
	defer logger.Sync()
	if logPath != "" {
		fmt.Println("Logfile is being written in:", logPath)
	}

	con := console.New(os.Stdin, os.Stdout)

	var initial string
	if len(os.Args) > 1 {
		initial = os.Args[1]
	}

	root, err := con.PromptRoot(initial)
	if err != nil {
		logger.Info("no directory given", zap.Error(err))
		return
	}

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	run(context.Background(), root, con, logger)
	con.WaitForAck(console.IsTerminal(os.Stdin))
}

// run scans root, removes the older file of each duplicate pair and prints
// the summary. Per-file failures are reported and never stop the run.
func run(ctx context.Context, root string, con *console.Console, logger *zap.Logger, opts ...scanner.Option) {
	con.ScanStarted(root)

	opts = append([]scanner.Option{
		scanner.WithLogger(logger.Named("scanner")),
		scanner.WithProgress(con.Progress),
	}, opts...)
	s := scanner.New(opts...)

	res, err := s.Scan(ctx, root)
	if err != nil {
		// The root was validated a moment ago; it can still vanish.
		con.ScanFailed(root, err)
		logger.Error("scan aborted", zap.String("root", root), zap.Error(err))
		return
	}

	c := cleaner.New(cleaner.WithLogger(logger.Named("cleaner")))
	sum := c.Clean(res.Pairs, con.Deletion)
	con.Summary(res, sum)
}
