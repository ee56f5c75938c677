// Package rows reads row batches from YAML, JSON and CSV files.
//
// YAML and JSON inputs are a list of mappings. Column order follows key order
// in the file. A value written as {raw: "NOW()"} is emitted verbatim by the
// bulk builder. CSV inputs take their columns from the header line and use
// \N for NULL.
package rows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixperk/bulksql/internal/bulk"
	"gopkg.in/yaml.v2"
)

const NullMarker = `\N`

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrUnsupportedValue  = errors.New("unsupported value")
)

// Load reads a batch from path, picking the parser from the extension.
func Load(path string) (bulk.Batch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open input '%s': %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(file)
	case ".csv":
		return ParseCSV(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseYAML decodes a list of mappings. JSON input is accepted as well.
func ParseYAML(r io.Reader) (bulk.Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var docs []yaml.MapSlice
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	batch := make(bulk.Batch, 0, len(docs))
	for i, doc := range docs {
		row := make(bulk.Row, 0, len(doc))
		for _, item := range doc {
			col := fmt.Sprint(item.Key)
			v, err := convert(item.Value)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i, col, err)
			}
			row = append(row, bulk.Field{Column: col, Value: v})
		}
		batch = append(batch, row)
	}
	return batch, nil
}

func convert(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return val, nil
	case yaml.MapSlice:
		if len(val) == 1 && fmt.Sprint(val[0].Key) == "raw" {
			if s, ok := val[0].Value.(string); ok {
				return bulk.Raw(s), nil
			}
		}
		return nil, fmt.Errorf("%w: nested mapping (only {raw: ...} is allowed)", ErrUnsupportedValue)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// ParseCSV reads a header line followed by data lines. Every value is a
// string except the NULL marker.
func ParseCSV(r io.Reader) (bulk.Batch, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return bulk.Batch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read csv header: %w", err)
	}

	var batch bulk.Batch
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read csv line %d: %w", line, err)
		}

		row := make(bulk.Row, len(header))
		for i, col := range header {
			var v any = record[i]
			if record[i] == NullMarker {
				v = nil
			}
			row[i] = bulk.Field{Column: col, Value: v}
		}
		batch = append(batch, row)
	}
	return batch, nil
}
