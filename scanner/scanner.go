package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers   = 8
	DefaultExtension = ".xml"
)

type Option func(*Scanner)

// WithWorkers sets how many files are fingerprinted in parallel. Values below
// one fall back to DefaultWorkers.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n < 1 {
			n = DefaultWorkers
		}
		s.workers = n
	}
}

func WithExtension(ext string) Option {
	return func(s *Scanner) { s.ext = ext }
}

func WithRetention(r Retention) Option {
	return func(s *Scanner) { s.retention = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// WithProgress registers a callback run once per processed file. It is called
// from worker goroutines and must be safe for concurrent use.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(s *Scanner) { s.onProgress = fn }
}

type Scanner struct {
	workers    int
	ext        string
	retention  Retention
	log        *zap.Logger
	onProgress func(ProgressEvent)

	// swapped in tests to simulate files vanishing mid-scan
	fingerprint func(path string) (FileRecord, error)

	// atomic total file processed
	fileCount atomic.Int64

	// unix nanos of the current scan start
	startTime atomic.Int64

	// ElapsedTime of the last finished scan in nanoseconds
	elapsedTime atomic.Int64
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		workers:     DefaultWorkers,
		ext:         DefaultExtension,
		retention:   RetainNewest,
		log:         zap.NewNop(),
		fingerprint: FingerprintFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) FileCount() int64 {
	return s.fileCount.Load()
}

func (s *Scanner) ElapsedTime() time.Duration {
	start := s.startTime.Load()
	if start == 0 {
		return 0
	}
	if elapsed := s.elapsedTime.Load(); elapsed != 0 {
		return time.Duration(elapsed)
	}
	return time.Since(time.Unix(0, start))
}

// Scan walks root and returns every duplicate pair found. One goroutine walks
// the tree and feeds a bounded queue; the workers fingerprint files and
// register them. Scan returns only after all workers have drained the queue.
//
// Files that cannot be read are reported in Result.Skipped and do not fail
// the scan. Only a failing walk or a cancelled ctx does.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	s.fileCount.Store(0)
	s.elapsedTime.Store(0)
	s.startTime.Store(start.UnixNano())

	s.log.Info("scan started",
		zap.String("root", root),
		zap.Int("workers", s.workers),
		zap.String("retention", s.retention.String()),
	)

	registry := NewRegistry(s.retention)
	jobs := make(chan string, s.workers)

	var (
		mu     sync.Mutex
		result = &Result{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		return Walk(root, s.ext, func(path string) error {
			select {
			case jobs <- path:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	for w := 0; w < s.workers; w++ {
		g.Go(func() error {
			for path := range jobs {
				s.process(registry, path, &mu, result)
			}
			return nil
		})
	}

	err := g.Wait()
	elapsed := time.Since(start)
	s.elapsedTime.Store(int64(elapsed))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("scan cancelled", zap.String("root", root), zap.Error(err))
		} else {
			s.log.Error("scan failed", zap.String("root", root), zap.Error(err))
		}
		return nil, err
	}

	sort.Slice(result.Pairs, func(i, j int) bool {
		a, b := result.Pairs[i], result.Pairs[j]
		if a.Older.Path != b.Older.Path {
			return a.Older.Path < b.Older.Path
		}
		return a.Newer.Path < b.Newer.Path
	})
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].Path < result.Skipped[j].Path })
	result.FilesScanned = s.fileCount.Load()
	result.Elapsed = elapsed

	s.log.Info("scan finished",
		zap.String("root", root),
		zap.Int64("files", result.FilesScanned),
		zap.Int("fingerprints", registry.Len()),
		zap.Int("pairs", len(result.Pairs)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (s *Scanner) process(registry *Registry, path string, mu *sync.Mutex, result *Result) {
	rec, err := s.fingerprint(path)
	count := s.fileCount.Add(1)
	if err != nil {
		var re *ReadError
		if !errors.As(err, &re) {
			re = &ReadError{Path: path, Err: err}
		}
		s.log.Warn("skipping unreadable file", zap.String("path", path), zap.Error(re.Err))

		mu.Lock()
		result.Skipped = append(result.Skipped, re)
		mu.Unlock()

		s.emit(ProgressEvent{Path: path, FileCount: count, Err: re})
		return
	}

	s.log.Debug("fingerprinted",
		zap.String("path", rec.Path),
		zap.Stringer("fingerprint", rec.Fingerprint),
		zap.Time("modified_at", rec.ModifiedAt),
	)

	if pair, dup := registry.Register(rec); dup {
		s.log.Debug("duplicate",
			zap.String("older", pair.Older.Path),
			zap.String("newer", pair.Newer.Path),
		)
		mu.Lock()
		result.Pairs = append(result.Pairs, pair)
		mu.Unlock()
	}

	s.emit(ProgressEvent{Path: path, FileCount: count})
}

func (s *Scanner) emit(ev ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(ev)
	}
}
