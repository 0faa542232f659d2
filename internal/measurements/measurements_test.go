package measurements

import (
	"bytes"
	"errors"
	"io"
	"math"
	"reflect"
	"strings"
	"testing"

	"xpug.it/1brc-agg/internal/baseline"
	"xpug.it/1brc-agg/internal/record"
)

type MockFileOpener struct {
	Content string
	Err     error
}

func (m MockFileOpener) Open(name string) (io.ReadCloser, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return io.NopCloser(strings.NewReader(m.Content)), nil
}

// MockRandom replays predefined values, looping around when exhausted.
type MockRandom struct {
	Norms    []float64
	index    int
	Ints     []int
	intIndex int
}

func (m *MockRandom) NormFloat64() float64 {
	if m.index >= len(m.Norms) {
		m.index = 0
	}
	result := m.Norms[m.index]
	m.index++
	return result
}

func (m *MockRandom) Intn(n int) int {
	if m.intIndex >= len(m.Ints) {
		m.intIndex = 0
	}
	result := m.Ints[m.intIndex]
	m.intIndex++
	return result
}

func named(names ...string) []Station {
	stations := make([]Station, len(names))
	for i, name := range names {
		stations[i] = Station{Name: name}
	}
	return stations
}

func TestLoadStations(t *testing.T) {
	tests := []struct {
		name    string
		opener  MockFileOpener
		path    string
		want    []Station
		wantErr bool
	}{
		{
			name:   "names with comments",
			opener: MockFileOpener{Content: "Station1\n#Comment\nStation2;-3.5\n"},
			path:   "stations.csv",
			want:   []Station{{Name: "Station1"}, {Name: "Station2", Mean: -3.5}},
		},
		{
			name:   "extra columns",
			opener: MockFileOpener{Content: "Hot;80.0;ignored\n"},
			path:   "stations.csv",
			want:   []Station{{Name: "Hot", Mean: 80}},
		},
		{
			name:    "invalid mean",
			opener:  MockFileOpener{Content: "Station1;warm\n"},
			path:    "stations.csv",
			wantErr: true,
		},
		{
			name:   "default list",
			opener: MockFileOpener{Err: errors.New("must not be opened")},
			path:   "",
			want:   DefaultStations,
		},
		{
			name:    "open failure",
			opener:  MockFileOpener{Err: errors.New("no such file")},
			path:    "stations.csv",
			wantErr: true,
		},
		{
			name:    "only comments",
			opener:  MockFileOpener{Content: "# header\n\n"},
			path:    "stations.csv",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadStations(tt.opener, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadStations() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadStations() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantNum int
		wantErr bool
	}{
		{
			name:    "valid arguments",
			args:    []string{"100"},
			wantNum: 100,
			wantErr: false,
		},
		{
			name:    "incorrect number of arguments - too few",
			args:    []string{},
			wantNum: 0,
			wantErr: true,
		},
		{
			name:    "incorrect number of arguments - too many",
			args:    []string{"100", "extra"},
			wantNum: 0,
			wantErr: true,
		},
		{
			name:    "non-integer argument",
			args:    []string{"not-an-int"},
			wantNum: 0,
			wantErr: true,
		},
		{
			name:    "negative integer argument",
			args:    []string{"-100"},
			wantNum: 0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotNum, err := CheckArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckArgs() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotNum != tt.wantNum {
				t.Errorf("CheckArgs() gotNum = %v, want %v", gotNum, tt.wantNum)
			}
		})
	}
}

func TestConvertBytes(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{1023, "1023 bytes"},
		{1024, "1 KiB"},
		{2048, "2 KiB"},
		{1048576, "1 MiB"},
	}

	for _, tt := range tests {
		got := ConvertBytes(tt.input)
		if got != tt.want {
			t.Errorf("ConvertBytes(%d) = %s; want %s", tt.input, got, tt.want)
		}
	}
}

func TestEstimateFileSize(t *testing.T) {
	tests := []struct {
		name     string
		stations []Station
		numRows  int
		want     string
	}{
		{
			name:     "single short station name",
			stations: named("StationA"),
			numRows:  1,
			want:     "Estimated max file size is: 14 bytes.",
		},
		{
			name:     "multiple station names",
			stations: named("StationA", "LongerStationName"),
			numRows:  2,
			want:     "Estimated max file size is: 36 bytes.",
		},
		{
			name:     "large number of rows",
			stations: named("StationA", "StationB"),
			numRows:  10000,
			want:     "Estimated max file size is: 136 KiB.",
		},
		{
			name:     "zero rows",
			stations: named("StationA"),
			numRows:  0,
			want:     "Estimated max file size is: 0 bytes.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateFileSize(tt.stations, tt.numRows)
			if got != tt.want {
				t.Errorf("EstimateFileSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	random := &MockRandom{
		Norms: []float64{0, 1, -0.5},
		Ints:  []int{0, 1},
	}
	var buf bytes.Buffer
	stations := []Station{{Name: "a", Mean: 0}, {Name: "b", Mean: 5}}
	if err := Generate(&buf, stations, 3, random); err != nil {
		t.Fatal(err)
	}
	expected := "a;0.0\nb;15.0\na;-5.0\n"
	if buf.String() != expected {
		t.Errorf("Generate() = %q, want %q", buf.String(), expected)
	}
}

func TestTemperature(t *testing.T) {
	for _, tc := range []struct {
		mean     float64
		norm     float64
		expected int64
	}{
		{mean: 0, norm: 0, expected: 0},
		{mean: 80, norm: 0, expected: 800},
		{mean: 80, norm: 1.5, expected: 950},
		{mean: 80, norm: 3, expected: 999},
		{mean: -8.8, norm: -0.25, expected: -113},
		{mean: -95, norm: -1, expected: -999},
	} {
		if got := Temperature(&MockRandom{Norms: []float64{tc.norm}}, tc.mean); got != tc.expected {
			t.Errorf("Temperature(mean=%v, norm=%v) = %d, want %d", tc.mean, tc.norm, got, tc.expected)
		}
	}
}

func TestGenerateCentresOnStationMean(t *testing.T) {
	stations, err := LoadStations(MockFileOpener{Content: "Hot;80.0\nCold;-20.0\n"}, "stations.csv")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Generate(&buf, stations, 20_000, NewRandom(5)); err != nil {
		t.Fatal(err)
	}
	got, err := baseline.Aggregate(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d stations, want 2", len(got))
	}
	for _, tc := range []struct {
		name string
		mean float64
	}{
		{name: "Hot", mean: 80},
		{name: "Cold", mean: -20},
	} {
		agg := got[tc.name]
		if mean := agg.Mean() / 10; math.Abs(mean-tc.mean) > 1 {
			t.Errorf("%s: mean temperature = %.2f, want about %.1f", tc.name, mean, tc.mean)
		}
		if agg.Max > record.MaxTenths || agg.Min < record.MinTenths {
			t.Errorf("%s: range [%d, %d] exceeds record bounds", tc.name, agg.Min, agg.Max)
		}
	}
	if hot := got["Hot"]; hot.Max != record.MaxTenths {
		t.Errorf("Hot: max = %d, expected clamping at %d", hot.Max, record.MaxTenths)
	}
}

func TestGenerateParses(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, DefaultStations, 5000, NewRandom(42)); err != nil {
		t.Fatal(err)
	}
	lines := bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), []byte("\n"))
	if len(lines) != 5000 {
		t.Fatalf("got %d lines, want 5000", len(lines))
	}
	for _, line := range lines {
		if _, _, err := record.Parse(line); err != nil {
			t.Fatalf("generated line does not parse: %v", err)
		}
	}
}

func TestGenerateNoStations(t *testing.T) {
	if err := Generate(io.Discard, nil, 1, NewRandom(1)); err == nil {
		t.Error("expected error for empty station list")
	}
}
