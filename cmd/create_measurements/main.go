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

// Command create_measurements writes a measurements file for
// calculate_average.
//
//	create_measurements [-stations weather_stations.csv] [-out measurements.txt] [-seed n] <rows>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"xpug.it/1brc-agg/internal/measurements"
)

var (
	stationsPath = flag.String("stations", "", "station list, one `name[;mean]` per line (default: built-in list)")
	outPath      = flag.String("out", "measurements.txt", "output `file`")
	seed         = flag.Int64("seed", time.Now().UnixNano(), "random seed")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("create_measurements: ")
	flag.Parse()

	numRows, err := measurements.CheckArgs(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	stations, err := measurements.LoadStations(measurements.RealFileOpener{}, *stationsPath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(measurements.EstimateFileSize(stations, numRows))

	startTime := time.Now()
	fmt.Println("Building test data...")

	file, err := os.Create(*outPath)
	if err != nil {
		log.Fatal(fmt.Errorf("error creating file: %w", err))
	}
	if err := measurements.Generate(file, stations, numRows, measurements.NewRandom(*seed)); err != nil {
		file.Close()
		log.Fatal(fmt.Errorf("failed to build test data: %w", err))
	}
	if err := file.Close(); err != nil {
		log.Fatal(fmt.Errorf("error closing file: %w", err))
	}

	fmt.Printf("Wrote %d measurements to %s in %s\n", numRows, *outPath, time.Since(startTime))
}
