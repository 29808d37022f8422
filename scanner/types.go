package scanner

import (
	"encoding/hex"
	"time"
)

// Fingerprint is the 128-bit MurmurHash3 digest of a file's content.
type Fingerprint [16]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// FileRecord is the observed state of one scanned file.
type FileRecord struct {
	Path        string
	Fingerprint Fingerprint
	ModifiedAt  time.Time
	Size        int64
}

// DuplicatePair holds two files with equal fingerprints, ordered by
// modification time.
type DuplicatePair struct {
	Older FileRecord
	Newer FileRecord
}

// Result is everything one scan produced.
type Result struct {
	Pairs        []DuplicatePair
	Skipped      []*ReadError
	FilesScanned int64
	Elapsed      time.Duration
}

type ProgressEvent struct {
	Path      string
	FileCount int64 // files processed so far, including this one
	Err       error // set when the file was skipped
}
