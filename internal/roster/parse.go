package roster

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseJSON decodes a roster from a JSON array of student records.
func ParseJSON(data []byte) ([]StudentRecord, error) {
	var students []StudentRecord
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("parse roster JSON: %w", err)
	}
	for i := range students {
		if students[i].ID == "" {
			return nil, fmt.Errorf("roster record %d has no id", i)
		}
	}
	return students, nil
}

// ParseCSV reads a roster from CSV. The header row is sniffed for id,
// name, and code columns; every other column holding numeric values is
// treated as a per-skill score keyed by the column header.
func ParseCSV(r io.Reader) ([]StudentRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}

	idCol, nameCol, codeCol := -1, -1, -1
	var scoreCols []int
	for i, h := range header {
		switch normalizeHeader(h) {
		case "id", "student_id", "studentid":
			idCol = i
		case "name", "student_name", "full_name":
			nameCol = i
		case "code", "student_code":
			codeCol = i
		default:
			scoreCols = append(scoreCols, i)
		}
	}
	if idCol < 0 && nameCol < 0 {
		return nil, fmt.Errorf("roster CSV has no id or name column (header: %s)", strings.Join(header, ", "))
	}

	var students []StudentRecord
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row %d: %w", row, err)
		}
		row++

		s := StudentRecord{}
		if idCol >= 0 && idCol < len(rec) {
			s.ID = strings.TrimSpace(rec[idCol])
		}
		if nameCol >= 0 && nameCol < len(rec) {
			s.Name = strings.TrimSpace(rec[nameCol])
		}
		if codeCol >= 0 && codeCol < len(rec) {
			s.Code = strings.TrimSpace(rec[codeCol])
		}
		if s.ID == "" {
			// Fall back to a positional ID so the partition stays total.
			s.ID = fmt.Sprintf("student-%d", row-1)
		}

		for _, c := range scoreCols {
			if c >= len(rec) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				continue
			}
			if s.Scores == nil {
				s.Scores = make(map[string]float64)
			}
			s.Scores[normalizeHeader(header[c])] = v
		}

		students = append(students, s)
	}

	if len(students) == 0 {
		return nil, fmt.Errorf("roster CSV has no student rows")
	}
	return students, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
