// Package record parses and renders single measurement lines of the form
// "<station>;[-]D[D].D".
package record

import (
	"fmt"
	"unsafe"
)

const (
	// Separator divides the station name from the temperature.
	Separator = ';'
	// Terminator ends every record.
	Terminator = '\n'

	// MinTenths and MaxTenths bound the representable temperatures.
	MinTenths = -999
	MaxTenths = 999

	// fastPathLen is the length of the longest numeric suffix including its
	// separator, ";-DD.D". Lines at least this long can be read at any of
	// their last fastPathLen positions without bounds checks.
	fastPathLen = 6
)

// MalformedError reports a line whose trailing bytes do not match the
// temperature grammar.
type MalformedError struct {
	// Offset is the byte offset of the line start within the input, or -1
	// if unknown.
	Offset int64
	Line   []byte
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("malformed record %q: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed record at byte %d %q: %s", e.Offset, e.Line, e.Reason)
}

func malformed(line []byte, reason string) *MalformedError {
	return &MalformedError{Offset: -1, Line: append([]byte(nil), line...), Reason: reason}
}

// at reads b[i] without a bounds check. Callers guarantee 0 <= i < len(b).
func at(b []byte, i int) byte {
	return *(*byte)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(b)), i))
}

// Parse splits line (without its terminator) into the station name and the
// temperature in tenths of a degree. The returned name aliases line.
func Parse(line []byte) ([]byte, int64, error) {
	n := len(line)
	if n < fastPathLen {
		return parseChecked(line)
	}

	// n >= fastPathLen, so indexes n-1 through n-6 are in range.
	dec := at(line, n-1) - '0'
	dot := at(line, n-2)
	units := at(line, n-3) - '0'
	if dec > 9 || units > 9 || dot != '.' {
		return nil, 0, malformed(line, "expected digit '.' digit suffix")
	}
	value := int64(units)*10 + int64(dec)

	switch c := at(line, n-4); c {
	case Separator:
		return line[:n-4], value, nil
	case '-':
		if at(line, n-5) != Separator {
			return nil, 0, malformed(line, "expected ';' before sign")
		}
		return line[:n-5], -value, nil
	default:
		tens := c - '0'
		if tens > 9 {
			return nil, 0, malformed(line, "expected ';', '-' or digit before units")
		}
		value += int64(tens) * 100
		switch at(line, n-5) {
		case Separator:
			return line[:n-5], value, nil
		case '-':
			if at(line, n-6) != Separator {
				return nil, 0, malformed(line, "expected ';' before sign")
			}
			return line[:n-6], -value, nil
		}
		return nil, 0, malformed(line, "expected ';' or '-' before tens")
	}
}

// parseChecked handles lines too short for the unchecked path.
func parseChecked(line []byte) ([]byte, int64, error) {
	n := len(line)
	if n < 4 {
		return nil, 0, malformed(line, "line too short")
	}
	dec := line[n-1] - '0'
	units := line[n-3] - '0'
	if dec > 9 || units > 9 || line[n-2] != '.' {
		return nil, 0, malformed(line, "expected digit '.' digit suffix")
	}
	value := int64(units)*10 + int64(dec)

	i := n - 4
	if tens := line[i] - '0'; tens <= 9 {
		value += int64(tens) * 100
		if i == 0 {
			return nil, 0, malformed(line, "missing ';'")
		}
		i--
	}
	if line[i] == '-' {
		value = -value
		if i == 0 {
			return nil, 0, malformed(line, "missing ';'")
		}
		i--
	}
	if line[i] != Separator {
		return nil, 0, malformed(line, "missing ';'")
	}
	return line[:i], value, nil
}

// Append renders tenths in record form, e.g. -123 as "-12.3", and appends
// it to dst. Values outside [MinTenths, MaxTenths] are clamped.
func Append(dst []byte, tenths int64) []byte {
	tenths = min(max(tenths, MinTenths), MaxTenths)
	if tenths < 0 {
		dst = append(dst, '-')
		tenths = -tenths
	}
	if tenths >= 100 {
		dst = append(dst, byte('0'+tenths/100))
	}
	return append(dst, byte('0'+tenths/10%10), '.', byte('0'+tenths%10))
}

// AppendLine appends "<station>;<temperature>\n" to dst.
func AppendLine(dst []byte, station string, tenths int64) []byte {
	dst = append(dst, station...)
	dst = append(dst, Separator)
	dst = Append(dst, tenths)
	return append(dst, Terminator)
}
