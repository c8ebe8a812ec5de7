// Package filesink implements offset-addressed file writes for a receive
// transaction, including the temp-file-then-rename dance needed when file
// data legally arrives before its metadata PDU.
//
// Grounded on backend/local.go's Object.Update (create-at-final-path,
// pre-allocate, write, remove-on-error) and Fs.OpenWriterAt (random-access
// writer, truncate-on-create) — the same two code paths CFDP's R2 receiver
// needs, just driven by PDU offsets instead of a streamed io.Reader.
package filesink

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrFilestoreRejection is returned when a file cannot be opened, written,
// or relocated for reasons outside the protocol's control (permissions,
// disk full, cross-filesystem rename failure). The receiver maps this
// straight onto the Filestore Rejection condition code.
var ErrFilestoreRejection = errors.New("filestore rejection")

// Sink is an open, writable destination file for one transaction.
type Sink struct {
	f       *os.File
	path    string
	isTemp  bool
}

// OpenAtTemp opens a uniquely-named writable file inside tmpDir, for use
// when file data arrives before the metadata PDU that names the real
// destination.
func OpenAtTemp(tmpDir string) (*Sink, error) {
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, errors.Wrap(ErrFilestoreRejection, err.Error())
	}
	f, err := os.CreateTemp(tmpDir, "cfdp-rx-*.part")
	if err != nil {
		return nil, errors.Wrap(ErrFilestoreRejection, err.Error())
	}
	return &Sink{f: f, path: f.Name(), isTemp: true}, nil
}

// OpenFinal opens (creating if necessary, truncating if it already
// exists) a writable file at its final destination path.
func OpenFinal(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(ErrFilestoreRejection, err.Error())
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(ErrFilestoreRejection, err.Error())
	}
	return &Sink{f: f, path: path}, nil
}

// Path returns the sink's current path (temp or final).
func (s *Sink) Path() string {
	return s.path
}

// IsTemp reports whether the sink is still writing to a temp file,
// awaiting a late metadata PDU.
func (s *Sink) IsTemp() bool {
	return s.isTemp
}

// MoveTempToFinal relocates a temp-opened sink to its real destination,
// once a late metadata PDU reveals the name. It renames when possible and
// falls back to copy-then-delete across filesystem boundaries, matching
// the spec's "atomically renames or copy-then-delete if crossing
// filesystems" requirement.
func (s *Sink) MoveTempToFinal(finalPath string) error {
	if !s.isTemp {
		return errors.Wrap(ErrFilestoreRejection, "sink is not a temp file")
	}
	oldPath := s.path
	if dir := filepath.Dir(finalPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(ErrFilestoreRejection, err.Error())
		}
	}
	if err := os.Rename(oldPath, finalPath); err == nil {
		s.path = finalPath
		s.isTemp = false
		return nil
	}
	// Cross-filesystem rename: copy then delete the original.
	if err := s.copyThenDelete(oldPath, finalPath); err != nil {
		return errors.Wrap(ErrFilestoreRejection, err.Error())
	}
	s.path = finalPath
	s.isTemp = false
	return nil
}

func (s *Sink) copyThenDelete(oldPath, finalPath string) error {
	if err := s.f.Sync(); err != nil {
		return err
	}
	dst, err := os.OpenFile(finalPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(dst, s.f); err != nil {
		return err
	}
	if err := s.f.Close(); err != nil {
		return err
	}
	s.f = dst
	return os.Remove(oldPath)
}

// WriteAt writes data at offset. A write that exactly repeats bytes
// already on disk at that offset is idempotent; a write that disagrees
// with what's already there is reported via mismatch so the caller can
// log an anomaly without failing the transaction. Existing bytes that are
// all zero count as unwritten, so overwriting them is never flagged.
func (s *Sink) WriteAt(offset int64, data []byte) (n int, mismatch bool, err error) {
	existing := make([]byte, len(data))
	en, readErr := s.f.ReadAt(existing, offset)
	hadExisting := readErr == nil && en == len(data)
	n, err = s.f.WriteAt(data, offset)
	if err != nil {
		return n, false, errors.Wrap(ErrFilestoreRejection, err.Error())
	}
	if hadExisting && !isZero(existing) && string(existing) != string(data) {
		mismatch = true
	}
	return n, mismatch, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ReadAt reads len(buf) bytes starting at offset, for the background CRC
// pass. It implements io.ReaderAt so crc.Pass can consume it directly.
func (s *Sink) ReadAt(buf []byte, offset int64) (int, error) {
	return s.f.ReadAt(buf, offset)
}

// Size returns the current on-disk size of the sink's file.
func (s *Sink) Size() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, errors.Wrap(ErrFilestoreRejection, err.Error())
	}
	return fi.Size(), nil
}

// Close closes the underlying file handle.
func (s *Sink) Close() error {
	return s.f.Close()
}

// Unlink closes and removes the sink's file, used when a temp file's
// metadata never arrives before the transaction terminates.
func (s *Sink) Unlink() error {
	path := s.path
	_ = s.f.Close()
	return os.Remove(path)
}
