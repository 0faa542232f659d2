//
//   Copyright 2023 The original authors
//
//   Licensed under the Apache License, Version 2.0 (the "License");
//   you may not use this file except in compliance with the License.
//   You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
//   Unless required by applicable law or agreed to in writing, software
//   distributed under the License is distributed on an "AS IS" BASIS,
//   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//   See the License for the specific language governing permissions and
//   limitations under the License.
//

// Package measurements generates test input files of "<station>;<temp>"
// records.
package measurements

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"xpug.it/1brc-agg/internal/record"
)

type FileOpener interface {
	Open(name string) (io.ReadCloser, error)
}

type RealFileOpener struct{}

func (RealFileOpener) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

type Random interface {
	NormFloat64() float64
	Intn(n int) int
}

// NewRandom returns a Random seeded with seed.
func NewRandom(seed int64) Random {
	return rand.New(rand.NewSource(seed))
}

// Station is a weather station and its mean temperature in degrees.
type Station struct {
	Name string
	Mean float64
}

// DefaultStations is used when no station list is given.
var DefaultStations = []Station{
	{"Abha", 18.0}, {"Abidjan", 26.0}, {"Accra", 26.4}, {"Addis Ababa", 16.0},
	{"Adelaide", 17.3}, {"Aden", 29.1}, {"Anchorage", 2.8}, {"Baghdad", 22.8},
	{"Bangkok", 28.6}, {"Berlin", 10.3}, {"Bulawayo", 18.9}, {"Cabo San Lucas", 23.9},
	{"Dakar", 24.0}, {"Damascus", 17.0}, {"Dodoma", 22.7}, {"Hamburg", 9.7},
	{"Istanbul", 13.9}, {"İzmir", 17.9}, {"Jakarta", 26.7}, {"Kinshasa", 25.3},
	{"Lodwar", 29.3}, {"Nouakchott", 25.7}, {"Ouarzazate", 19.1}, {"Palembang", 27.3},
	{"Petropavlovsk-Kamchatsky", 1.9}, {"Reykjavík", 4.3}, {"São Paulo", 19.7},
	{"St. John's", 5.0}, {"Tamale", 27.9}, {"Whitehorse", -0.1}, {"Yakutsk", -8.8},
	{"Zürich", 9.3},
}

// stddev of every station's temperatures, in degrees
const stddev = 10.0

// CheckArgs returns the row count from the positional arguments.
func CheckArgs(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("incorrect number of arguments - see example usage, create_measurements 1000")
	}
	numRows, err := strconv.Atoi(args[0])
	if err != nil || numRows <= 0 {
		return 0, fmt.Errorf("argument must be a positive integer - see example usage, create_measurements 1000")
	}
	return numRows, nil
}

// LoadStations reads "name;mean" lines from path. A missing mean is 0.
// Lines containing '#' are comments. An empty path yields DefaultStations.
func LoadStations(opener FileOpener, path string) ([]Station, error) {
	if path == "" {
		return DefaultStations, nil
	}

	file, err := opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening station list: %w", err)
	}
	defer file.Close()

	var stations []Station
	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if line == "" || strings.Contains(line, "#") {
			continue
		}
		name, mean, hasMean := strings.Cut(line, ";")
		if name == "" {
			continue
		}
		station := Station{Name: name}
		if hasMean {
			// extra columns after the mean are ignored
			mean, _, _ = strings.Cut(mean, ";")
			if station.Mean, err = strconv.ParseFloat(strings.TrimSpace(mean), 64); err != nil {
				return nil, fmt.Errorf("%s:%d: invalid mean temperature %q", path, lineNo, mean)
			}
		}
		stations = append(stations, station)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading station list: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("station list %s is empty", path)
	}
	return stations, nil
}

// EstimateFileSize describes the expected output size of numRows rows, from
// the average name length and an average temperature rendering.
func EstimateFileSize(stations []Station, numRows int) string {
	totalNameBytes := 0
	for _, s := range stations {
		totalNameBytes += len(s.Name)
	}
	avgNameBytes := totalNameBytes / len(stations)
	avgTempBytes := 4.400200100050025
	avgLineLength := avgNameBytes + int(avgTempBytes) + 2
	return fmt.Sprintf("Estimated max file size is: %s.", ConvertBytes(numRows*avgLineLength))
}

// ConvertBytes renders num with the largest binary unit up to GiB, rounding
// down, e.g. 2047 as "1 KiB".
func ConvertBytes(num int) string {
	units := []string{"bytes", "KiB", "MiB", "GiB"}
	var i int
	for num >= 1024 && i < len(units)-1 {
		num /= 1024
		i++
	}
	return fmt.Sprintf("%d %s", num, units[i])
}

// Temperature draws a normally distributed temperature around mean degrees
// and returns it in tenths, clamped to the record range.
func Temperature(random Random, mean float64) int64 {
	v := math.Round((mean + random.NormFloat64()*stddev) * 10)
	return int64(min(max(v, record.MinTenths), record.MaxTenths))
}

// Generate writes numRows records for stations picked uniformly at random.
func Generate(w io.Writer, stations []Station, numRows int, random Random) error {
	if len(stations) == 0 {
		return fmt.Errorf("no stations")
	}

	writer := bufio.NewWriter(w)
	line := make([]byte, 0, 128)
	for i := 0; i < numRows; i++ {
		station := stations[random.Intn(len(stations))]
		line = record.AppendLine(line[:0], station.Name, Temperature(random, station.Mean))
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("error writing record: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("error flushing records: %w", err)
	}
	return nil
}
