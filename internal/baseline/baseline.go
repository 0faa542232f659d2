// Package baseline is the straightforward single-threaded aggregator: scan
// lines, split on ';', parse with strconv. It is slow and serves as the
// reference the parallel pipeline is checked against.
package baseline

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"xpug.it/1brc-agg/internal/aggregate"
	"xpug.it/1brc-agg/internal/record"
)

// maxLineLen bounds a record line. Station names are at most 100 bytes of
// UTF-8 in the reference data.
const maxLineLen = 1024

// Aggregate reads every record from r.
func Aggregate(r io.Reader) (map[string]aggregate.Aggregate, error) {
	stations := map[string]aggregate.Aggregate{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineLen), maxLineLen)

	var offset int64
	for scanner.Scan() {
		line := scanner.Bytes()
		sep := bytes.LastIndexByte(line, record.Separator)
		if sep < 0 {
			return nil, &record.MalformedError{Offset: offset, Line: bytes.Clone(line), Reason: "missing ';'"}
		}
		temp, err := strconv.ParseFloat(string(line[sep+1:]), 64)
		if err != nil {
			return nil, &record.MalformedError{Offset: offset, Line: bytes.Clone(line), Reason: err.Error()}
		}

		station := string(line[:sep])
		tenths := int64(math.Round(temp * 10))
		if data, present := stations[station]; present {
			data.Add(tenths)
			stations[station] = data
		} else {
			stations[station] = aggregate.New(tenths)
		}
		offset += int64(len(line)) + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	return stations, nil
}
