package datastructure

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsnet/compress/bzip2"
)

type stopRecord struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	When string  `json:"when,omitempty"`
}

const whenLayoutNoSeconds = "2006-01-02T15:04"

// ParseStopWhen accepts RFC3339 or the shorter yyyy-mm-ddThh:mm form.
func ParseStopWhen(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	when, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return when, nil
	}
	when, err = time.Parse(whenLayoutNoSeconds, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid when %q: %w", raw, err)
	}
	return when, nil
}

// ReadStops loads a stop list from a json file, bzip2 compressed when the
// filename ends with .bz2. missing ids fall back to the stop name.
func ReadStops(filename string) ([]Stop, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	var dec *json.Decoder
	if strings.HasSuffix(filename, ".bz2") {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, err
		}
		dec = json.NewDecoder(bufio.NewReader(bz))
	} else {
		dec = json.NewDecoder(bufio.NewReader(f))
	}

	var records []stopRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode stops %s: %w", filename, err)
	}

	stops := make([]Stop, 0, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = rec.Name
		}
		if id == "" {
			return nil, fmt.Errorf("stop %d has neither id nor name", i)
		}
		when, err := ParseStopWhen(rec.When)
		if err != nil {
			return nil, fmt.Errorf("stop %s: %w", id, err)
		}
		name := rec.Name
		if name == "" {
			name = id
		}
		stops = append(stops, NewStop(id, name, rec.Lat, rec.Lon, when))
	}
	return stops, nil
}

// WriteStops mirrors ReadStops, bzip2 compressed when the filename ends with .bz2.
func WriteStops(filename string, stops []Stop) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	defer f.Close()

	records := make([]stopRecord, len(stops))
	for i, s := range stops {
		var when string
		if s.HasWhen() {
			when = s.GetWhen().Format(time.RFC3339)
		}
		records[i] = stopRecord{
			ID:   s.GetID(),
			Name: s.GetName(),
			Lat:  s.GetLat(),
			Lon:  s.GetLon(),
			When: when,
		}
	}

	if strings.HasSuffix(filename, ".bz2") {
		bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
		if err != nil {
			return err
		}
		w := bufio.NewWriter(bz)
		enc := json.NewEncoder(w)
		if err := enc.Encode(records); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return bz.Close()
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return w.Flush()
}
