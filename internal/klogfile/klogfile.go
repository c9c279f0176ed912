// Package klogfile loads and saves the Klog file the CLI works on.
package klogfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/parser"
)

// BaseDir returns the root data directory (~/.klog).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	return filepath.Join(home, ".klog"), nil
}

// DefaultPath returns ~/.klog/time.klg.
func DefaultPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "time.klg"), nil
}

// Load parses the file at path. A missing file yields no records.
func Load(path string) ([]*klog.Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("klog file does not exist yet", "path", path)
		return []*klog.Record{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "storage error reading %s", path)
	}

	records, err := parser.Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	slog.Debug("loaded klog file", "path", path, "records", len(records))
	return records, nil
}

// Save atomically writes records to path, ending the file with a newline.
func Save(path string, records []*klog.Record, opts klog.RenderOptions) error {
	data := klog.RenderRecords(records, opts)
	if data != "" {
		data += "\n"
	}
	if err := WriteAtomic(path, []byte(data)); err != nil {
		return err
	}
	slog.Debug("saved klog file", "path", path, "records", len(records))
	return nil
}

// WriteAtomic writes data to a temp file next to path and renames it into
// place. Missing parent directories are created with mode 0700.
func WriteAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "storage error creating directories")
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return errors.Wrap(err, "storage error writing temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "storage error renaming temp file")
	}
	return nil
}

// FindOpen returns the latest-dated record holding an open range, or nil.
// Among records of the same date the last one in the file wins.
func FindOpen(records []*klog.Record) *klog.Record {
	var found *klog.Record
	for _, r := range records {
		if r.OpenEntry() == nil {
			continue
		}
		if found == nil || !r.Date.Before(found.Date) {
			found = r
		}
	}
	return found
}

// RecordFor returns the last record dated date. With create, a missing record
// is appended to *records and returned.
func RecordFor(records *[]*klog.Record, date time.Time, create bool) *klog.Record {
	for i := len(*records) - 1; i >= 0; i-- {
		if (*records)[i].Date.Equal(date) {
			return (*records)[i]
		}
	}
	if !create {
		return nil
	}
	rec := klog.NewRecord(date)
	*records = append(*records, rec)
	return rec
}

// InRange returns the records dated within [from, to], in file order.
func InRange(records []*klog.Record, from, to time.Time) []*klog.Record {
	var out []*klog.Record
	for _, r := range records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out
}
