package console

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/riadafridishibly/xmldedup/cleaner"
	"github.com/riadafridishibly/xmldedup/scanner"
)

// Console is the line-oriented shell around a scan: it asks for the root,
// reports per-file events and prints the final summary. Output methods may be
// called from several goroutines.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
}

func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: newReader(in), out: out}
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) ScanStarted(root string) {
	c.printf("\nScanning '%s' for duplicate XML files...\n\n", root)
}

func (c *Console) ScanFailed(root string, err error) {
	c.printf("Error scanning %s: %v\n", root, err)
}

// Progress prints skipped files; successful reads are silent.
func (c *Console) Progress(ev scanner.ProgressEvent) {
	if ev.Err == nil {
		return
	}
	cause := ev.Err
	if re, ok := ev.Err.(*scanner.ReadError); ok {
		cause = re.Err
	}
	c.printf("[SKIPPED] %s: %v\n", ev.Path, cause)
}

func (c *Console) Deletion(out cleaner.Outcome) {
	if out.Err == nil {
		c.printf("[DELETED] %s\n", out.Path)
		return
	}
	cause := out.Err
	if de, ok := out.Err.(*cleaner.DeletionError); ok {
		cause = de.Err
	}
	c.printf("Error deleting %s: %v\n", out.Path, cause)
}

// Summary prints the closing lines. With no pairs it reports that nothing was
// found; otherwise the count covers successful removals only.
func (c *Console) Summary(res *scanner.Result, sum cleaner.Summary) {
	if len(res.Pairs) == 0 {
		c.printf("\nNo duplicate XML files found.\n")
	} else {
		c.printf("\nSuccessfully deleted %s.\n", english.Plural(sum.Deleted, "older duplicate", "older duplicates"))
		if sum.Failed > 0 {
			c.printf("Failed to delete %s.\n", english.Plural(sum.Failed, "file", "files"))
		}
	}
	c.printf("Files scanned: %s | Skipped: %s | Reclaimed: %s | Elapsed: %s\n",
		humanize.Comma(res.FilesScanned),
		humanize.Comma(int64(len(res.Skipped))),
		humanize.Bytes(uint64(sum.ReclaimedBytes)),
		res.Elapsed.Round(time.Millisecond),
	)
}
