// Package format renders station aggregates as "{name=min/mean/max, ...}".
package format

import (
	"bufio"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"xpug.it/1brc-agg/internal/aggregate"
)

// Tenths rounds a value in tenths to the displayed tenth: floor(x + 0.49).
// Integral inputs are returned unchanged.
func Tenths(x float64) int64 {
	return int64(math.Floor(x + 0.49))
}

// AppendTemperature appends tenths as a one-decimal number, e.g. -35 as
// "-3.5" and -3 as "-0.3".
func AppendTemperature(dst []byte, tenths int64) []byte {
	if tenths < 0 {
		dst = append(dst, '-')
		tenths = -tenths
	}
	dst = strconv.AppendInt(dst, tenths/10, 10)
	return append(dst, '.', byte('0'+tenths%10))
}

// AppendStation appends "name=min/mean/max" for one station.
func AppendStation(dst []byte, name string, a aggregate.Aggregate) []byte {
	dst = append(dst, name...)
	dst = append(dst, '=')
	dst = AppendTemperature(dst, a.Min)
	dst = append(dst, '/')
	dst = AppendTemperature(dst, Tenths(a.Mean()))
	dst = append(dst, '/')
	return AppendTemperature(dst, a.Max)
}

// Write prints stations in byte order of their names, followed by a newline.
func Write(w io.Writer, stations map[string]aggregate.Aggregate) error {
	names := maps.Keys(stations)
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 128)
	bw.WriteByte('{')
	for i, name := range names {
		buf = buf[:0]
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = AppendStation(buf, name, stations[name])
		bw.Write(buf)
	}
	bw.WriteString("}\n")
	return bw.Flush()
}

// String returns the rendering of Write without the trailing newline.
func String(stations map[string]aggregate.Aggregate) string {
	var b strings.Builder
	Write(&b, stations)
	return strings.TrimSuffix(b.String(), "\n")
}
