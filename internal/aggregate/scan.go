package aggregate

import (
	"bytes"

	"xpug.it/1brc-agg/internal/record"
)

// ScanOptions controls how Scan treats the end of its input.
type ScanOptions struct {
	// RequireTerminator rejects trailing bytes not followed by '\n'. By
	// default they are parsed as the final record.
	RequireTerminator bool
}

// Scan aggregates every record in data, which must start at a line start.
// base is the offset of data within the whole input and is used only for
// error reporting. The returned table borrows its keys from data.
//
// The first malformed record aborts the scan with a *record.MalformedError.
func Scan(data []byte, base int64, opts ScanOptions) (*Table, error) {
	t := NewTable()
	offset := 0
	for offset < len(data) {
		rest := data[offset:]
		nlPos := bytes.IndexByte(rest, record.Terminator)
		if nlPos == -1 {
			if opts.RequireTerminator {
				return nil, &record.MalformedError{
					Offset: base + int64(offset),
					Line:   bytes.Clone(rest),
					Reason: "missing final line terminator",
				}
			}
			nlPos = len(rest)
		}

		station, tenths, err := record.Parse(rest[:nlPos])
		if err != nil {
			if merr, ok := err.(*record.MalformedError); ok {
				merr.Offset = base + int64(offset)
			}
			return nil, err
		}
		t.Add(station, tenths)
		offset += nlPos + 1
	}
	return t, nil
}
