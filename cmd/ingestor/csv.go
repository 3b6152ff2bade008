package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// requiredColumns must be present in every venue file header.
var requiredColumns = []string{"name", "capacity"}

// rowError points at a rejected line of a venue file.
type rowError struct {
	Line int
	Err  error
}

func (e rowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

// parseVenues reads a venue CSV. Columns: id, name, city, region, capacity,
// lat, lon, genres (semicolon separated). Only name and capacity are
// required. Bad rows are skipped and reported.
func parseVenues(r io.Reader) ([]domain.Venue, []rowError, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", c)
		}
	}

	var venues []domain.Venue
	var rejected []rowError
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rejected = append(rejected, rowError{Line: line, Err: err})
			continue
		}

		v, err := venueFromRecord(record, cols)
		if err != nil {
			rejected = append(rejected, rowError{Line: line, Err: err})
			continue
		}
		venues = append(venues, v)
	}
	return venues, rejected, nil
}

func venueFromRecord(record []string, cols map[string]int) (domain.Venue, error) {
	v := domain.Venue{
		ID:     getField(record, cols, "id"),
		Name:   getField(record, cols, "name"),
		City:   getField(record, cols, "city"),
		Region: getField(record, cols, "region"),
		Genres: splitGenres(getField(record, cols, "genres")),
	}
	if v.Name == "" {
		return v, errors.New("name is empty")
	}

	capacity, err := strconv.Atoi(getField(record, cols, "capacity"))
	if err != nil || capacity < 0 {
		return v, fmt.Errorf("invalid capacity %q", getField(record, cols, "capacity"))
	}
	v.Capacity = capacity

	latS, lonS := getField(record, cols, "lat"), getField(record, cols, "lon")
	if latS == "" && lonS == "" {
		return v, nil
	}
	lat, errLat := strconv.ParseFloat(latS, 64)
	lon, errLon := strconv.ParseFloat(lonS, 64)
	if errLat != nil || errLon != nil {
		return v, fmt.Errorf("invalid coordinates %q,%q", latS, lonS)
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return v, err
	}
	v.Location = &p
	return v, nil
}

func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	var genres []string
	for _, g := range strings.Split(s, ";") {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
