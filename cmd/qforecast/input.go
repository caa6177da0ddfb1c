package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aouyang1/go-ensemble-forecaster/timedataset"
	"github.com/goccy/go-json"
)

var ErrUnknownFormat = errors.New("unknown input format")

// readObservations loads observations from a .json array of {period, value} objects or a
// .csv of period,value rows with an optional header
func readObservations(path string) ([]timedataset.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSON(f)
	case ".csv":
		return decodeCSV(f)
	default:
		return nil, fmt.Errorf("file %s, %w", path, ErrUnknownFormat)
	}
}

func decodeJSON(r io.Reader) ([]timedataset.Observation, error) {
	var obs []timedataset.Observation
	if err := json.NewDecoder(r).Decode(&obs); err != nil {
		return nil, fmt.Errorf("unable to decode json observations, %w", err)
	}
	return obs, nil
}

func decodeCSV(r io.Reader) ([]timedataset.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv observations, %w", err)
	}

	obs := make([]timedataset.Observation, 0, len(records))
	for i, rec := range records {
		val, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if i == 0 {
				// header row
				continue
			}
			return nil, fmt.Errorf("unable to parse value on line %d, %w", i+1, err)
		}
		obs = append(obs, timedataset.Observation{Period: strings.TrimSpace(rec[0]), Value: val})
	}
	return obs, nil
}
