package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xtxerr/chunkit/config"
	"github.com/xtxerr/chunkit/internal/aggregate"
	"github.com/xtxerr/chunkit/internal/errors"
)

// WriteFile writes the report line for entries to path.
//
// The report is written to a temporary file in the same directory, synced
// and renamed over path, so path either keeps its old content or holds the
// complete new report.
func WriteFile(path string, entries []aggregate.Entry) error {
	err := writeAtomic(path, func(w io.Writer) error {
		return Write(w, entries)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrWrite, path, err)
	}
	return nil
}

// writeAtomic streams fill into a temp file next to dest and renames it
// into place once everything has been flushed and synced.
func writeAtomic(dest string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, config.DefaultOutputFileMode)

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriterSize(tmp, 64*1024)
	if err := fill(bw); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	// Best effort: persist the rename itself.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
