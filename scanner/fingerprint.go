package scanner

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/spaolacci/murmur3"
)

// FingerprintBytes hashes data with MurmurHash3 x64/128, seed 0. The digest is
// laid out as h1 then h2, little-endian.
func FingerprintBytes(data []byte) Fingerprint {
	return makeFingerprint(murmur3.Sum128(data))
}

// FingerprintFile reads the full content of path and returns its record.
// Metadata is not part of the fingerprint. Failures come back as *ReadError.
func FingerprintFile(path string) (FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileRecord{}, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	h := murmur3.New128()
	if _, err := io.Copy(h, f); err != nil {
		return FileRecord{}, &ReadError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		return FileRecord{}, &ReadError{Path: path, Err: err}
	}

	return FileRecord{
		Path:        path,
		Fingerprint: makeFingerprint(h.Sum128()),
		ModifiedAt:  info.ModTime(),
		Size:        info.Size(),
	}, nil
}

func makeFingerprint(h1, h2 uint64) Fingerprint {
	var fp Fingerprint
	binary.LittleEndian.PutUint64(fp[:8], h1)
	binary.LittleEndian.PutUint64(fp[8:], h2)
	return fp
}
