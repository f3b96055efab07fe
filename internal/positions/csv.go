package positions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// column aliases accepted in the header, canonical name first
var (
	trialIDColumns       = []string{"trial_id", "trialDocId"}
	timeColumns          = []string{"t", "time"}
	xColumns             = []string{"x"}
	yColumns             = []string{"y"}
	participantIDColumns = []string{"participant_id", "participantId"}
	sourceColumns        = []string{"source"}
)

var csvHeader = []string{"trial_id", "participant_id", "t", "x", "y", "source"}

// ReadCSV parses a positions table. The header must name trial_id, t, x and y
// (trialDocId and time are accepted as aliases); participant_id and source
// are optional. Missing required columns fail with ErrMissingColumns before
// any row is read.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input, need %s", ErrMissingColumns, strings.Join(requiredNames(), ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := indexHeader(header)
	idCol, tCol := cols.find(trialIDColumns), cols.find(timeColumns)
	xCol, yCol := cols.find(xColumns), cols.find(yColumns)

	var missing []string
	for _, req := range []struct {
		name string
		idx  int
	}{{"trial_id", idCol}, {"t", tCol}, {"x", xCol}, {"y", yCol}} {
		if req.idx < 0 {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	pCol, sCol := cols.find(participantIDColumns), cols.find(sourceColumns)

	var rows []Row
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data: %w", err)
		}

		row := Row{TrialID: rec[idCol]}
		if row.T, err = parseField(rec, tCol, "t", line); err != nil {
			return nil, err
		}
		if row.X, err = parseField(rec, xCol, "x", line); err != nil {
			return nil, err
		}
		if row.Y, err = parseField(rec, yCol, "y", line); err != nil {
			return nil, err
		}
		if pCol >= 0 {
			row.ParticipantID = rec[pCol]
		}
		if sCol >= 0 {
			row.Source = rec[sCol]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes rows with the canonical header.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.TrialID,
			r.ParticipantID,
			strconv.FormatFloat(r.T, 'f', -1, 64),
			strconv.FormatFloat(r.X, 'f', -1, 64),
			strconv.FormatFloat(r.Y, 'f', -1, 64),
			r.Source,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type headerIndex map[string]int

func indexHeader(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func (h headerIndex) find(aliases []string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

func parseField(rec []string, col int, name string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s at line %d: %w", name, line, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s at line %d is %q", ErrNonFinite, name, line, rec[col])
	}
	return v, nil
}

func requiredNames() []string {
	return []string{"trial_id", "t", "x", "y"}
}
