package crawler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Seed is one row of the seed list.
type Seed struct {
	Owner string
	Repo  string
}

// LoadSeeds reads the first n rows of a CSV file with "Owner" and "Repo"
// header columns. Other columns are ignored.
func LoadSeeds(path string, n int) ([]Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return readSeeds(f, n)
}

func readSeeds(r io.Reader, n int) ([]Seed, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read seed header: %w", err)
	}
	ownerCol, repoCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "Owner":
			ownerCol = i
		case "Repo":
			repoCol = i
		}
	}
	if ownerCol < 0 || repoCol < 0 {
		return nil, errors.New("seed file must have Owner and Repo columns")
	}

	seeds := make([]Seed, 0, max(n, 0))
	for len(seeds) < n {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read seed row %d: %w", len(seeds)+1, err)
		}
		if ownerCol >= len(record) || repoCol >= len(record) {
			return nil, fmt.Errorf("seed row %d is missing columns", len(seeds)+1)
		}
		seeds = append(seeds, Seed{
			Owner: strings.TrimSpace(record[ownerCol]),
			Repo:  strings.TrimSpace(record[repoCol]),
		})
	}
	return seeds, nil
}
