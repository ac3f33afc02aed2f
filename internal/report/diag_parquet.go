package report

import (
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/xtxerr/chunkit/internal/errors"
)

// Parquet diagnostics hold one row per key.

func writeParquet(w io.Writer, rows []Row, codec compress.Codec) error {
	writer := parquet.NewGenericWriter[Row](w, parquet.Compression(codec))

	if _, err := writer.Write(rows); err != nil {
		writer.Close()
		return errors.Wrap(err, "write rows")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "close writer")
	}
	return nil
}

func readParquet(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer f.Close()

	reader := parquet.NewGenericReader[Row](f)
	defer reader.Close()

	rows := make([]Row, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "read rows of %s", path)
	}
	return rows[:n], nil
}
