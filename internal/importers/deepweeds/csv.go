package deepweeds

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"github.com/weedai/weedcoco-go/internal/errors"
)

// LabelsFileName is the label file expected inside the labels directory.
const LabelsFileName = "labels.csv"

// Required header columns of labels.csv.
const (
	columnFilename = "Filename"
	columnLabel    = "Label"
	columnSpecies  = "Species"
)

// LabelRow is one data row of labels.csv.
type LabelRow struct {
	Line     int // line number in the CSV file, header is line 1
	Filename string
	Label    int
	Species  string
}

// ReadLabelsFile opens path on fs and parses it with ReadLabels.
func ReadLabelsFile(fs afero.Fs, path string) ([]LabelRow, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.FileError(fmt.Errorf("opening labels file: %w", err), path)
	}
	defer f.Close()

	rows, err := ReadLabels(f)
	if err != nil {
		return nil, errors.New(fmt.Errorf("%s: %w", path, err)).
			Category(errors.CategoryFileParsing).
			FileContext(path).
			Build()
	}
	return rows, nil
}

// ReadLabels parses DeepWeeds labels in row order. Columns are located by
// header name, so extra columns and any column order are accepted.
func ReadLabels(r io.Reader) ([]LabelRow, error) {
	br := stripUTF8BOM(bufio.NewReader(r))

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	idx, err := requireColumns(header, columnFilename, columnLabel, columnSpecies)
	if err != nil {
		return nil, err
	}

	var rows []LabelRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(fmt.Errorf("reading row %d: %w", len(rows)+1, err)).
				Category(errors.CategoryFileParsing).
				Build()
		}

		row, err := parseRow(record, idx, len(rows)+2)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, idx map[string]int, line int) (LabelRow, error) {
	field := func(name string) (string, error) {
		i := idx[name]
		if i >= len(record) {
			return "", errors.Newf("line %d: missing %s column", line, name).
				Category(errors.CategoryFileParsing).
				Context("line", line).
				Build()
		}
		return record[i], nil
	}

	filename, err := field(columnFilename)
	if err != nil {
		return LabelRow{}, err
	}
	labelText, err := field(columnLabel)
	if err != nil {
		return LabelRow{}, err
	}
	species, err := field(columnSpecies)
	if err != nil {
		return LabelRow{}, err
	}

	label, err := strconv.Atoi(strings.TrimSpace(labelText))
	if err != nil {
		return LabelRow{}, errors.Newf("line %d: label %q is not an integer", line, labelText).
			Category(errors.CategoryFileParsing).
			Context("line", line).
			Context("filename", filename).
			Build()
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return LabelRow{}, errors.Newf("line %d: empty filename", line).
			Category(errors.CategoryFileParsing).
			Context("line", line).
			Build()
	}

	return LabelRow{
		Line:     line,
		Filename: filename,
		Label:    label,
		Species:  species,
	}, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Newf("missing header").Category(errors.CategoryFileParsing).Build()
		}
		return nil, errors.New(fmt.Errorf("reading header: %w", err)).Category(errors.CategoryFileParsing).Build()
	}

	header := make([]string, len(h))
	for i := range h {
		header[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(header[i]) {
			return nil, errors.Newf("invalid header encoding").Category(errors.CategoryFileParsing).Build()
		}
	}
	return header, nil
}

func requireColumns(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, errors.Newf("missing required header column: %s", name).
				Category(errors.CategoryFileParsing).
				Context("header", strings.Join(header, ",")).
				Build()
		}
	}
	return idx, nil
}
