package cleaner

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/riadafridishibly/xmldedup/scanner"
)

// DeletionError reports a file picked for removal that could not be removed.
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

func IsDeletion(err error) bool {
	var e *DeletionError
	return errors.As(err, &e)
}

// Victim returns the path to remove from a duplicate pair: always the older
// file.
func Victim(pair scanner.DuplicatePair) string {
	return pair.Older.Path
}

// Outcome is the result of one removal attempt. Err is a *DeletionError or nil.
type Outcome struct {
	Path string
	Size int64
	Err  error
}

type Summary struct {
	Attempted      int
	Deleted        int
	Failed         int
	ReclaimedBytes int64
}

type Option func(*Cleaner)

// WithRemover replaces os.Remove.
func WithRemover(fn func(path string) error) Option {
	return func(c *Cleaner) {
		if fn != nil {
			c.remove = fn
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Cleaner) {
		if l != nil {
			c.log = l
		}
	}
}

type Cleaner struct {
	remove func(path string) error
	log    *zap.Logger
}

func New(opts ...Option) *Cleaner {
	c := &Cleaner{
		remove: os.Remove,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean removes the victim of every pair, in order, with a single attempt
// each. A failure is reported and the batch continues; files already removed
// stay removed. report may be nil.
func (c *Cleaner) Clean(pairs []scanner.DuplicatePair, report func(Outcome)) Summary {
	var sum Summary
	for _, pair := range pairs {
		path := Victim(pair)
		out := Outcome{Path: path, Size: pair.Older.Size}
		sum.Attempted++

		if err := c.remove(path); err != nil {
			out.Err = &DeletionError{Path: path, Err: err}
			sum.Failed++
			c.log.Warn("delete failed", zap.String("path", path), zap.Error(err))
		} else {
			sum.Deleted++
			sum.ReclaimedBytes += pair.Older.Size
			c.log.Info("deleted",
				zap.String("path", path),
				zap.String("kept", pair.Newer.Path),
				zap.Stringer("fingerprint", pair.Older.Fingerprint),
			)
		}

		if report != nil {
			report(out)
		}
	}
	return sum
}
