package series

import (
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// Column names in the results table. The simulator writes them in this
// order, but LoadCSV resolves columns by name so order does not matter.
const (
	ColTime           = "time"
	ColCenterImpurity = "center_impurity"
	ColEdgeImpurity   = "edge_impurity"
	ColTurbulence     = "turbulence"
)

// ErrMissingColumn indicates a results table without one of the required columns.
var ErrMissingColumn = errors.New("series: missing column")

// loadChunk is the Arrow record batch size used when reading CSV.
const loadChunk = 4096

// LoadCSV reads a simulation results table from path. The file must have a
// header row naming at least the four required columns; all required columns
// are read as float64. The loaded run is validated before being returned.
func LoadCSV(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results table: %w", err)
	}
	defer f.Close()

	rdr := csv.NewInferringReader(f,
		csv.WithHeader(true),
		csv.WithChunk(loadChunk),
		csv.WithAllocator(memory.DefaultAllocator),
		csv.WithColumnTypes(map[string]arrow.DataType{
			ColTime:           arrow.PrimitiveTypes.Float64,
			ColCenterImpurity: arrow.PrimitiveTypes.Float64,
			ColEdgeImpurity:   arrow.PrimitiveTypes.Float64,
			ColTurbulence:     arrow.PrimitiveTypes.Float64,
		}),
	)
	defer rdr.Release()

	run := &Run{}
	for rdr.Next() {
		rec := rdr.Record()
		schema := rec.Schema()

		var loadErr error
		run.Time = appendColumn(run.Time, rec, schema, ColTime, &loadErr)
		run.CenterImpurity = appendColumn(run.CenterImpurity, rec, schema, ColCenterImpurity, &loadErr)
		run.EdgeImpurity = appendColumn(run.EdgeImpurity, rec, schema, ColEdgeImpurity, &loadErr)
		run.Turbulence = appendColumn(run.Turbulence, rec, schema, ColTurbulence, &loadErr)
		if loadErr != nil {
			return nil, loadErr
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("reading results table %q: %w", path, err)
	}

	if err := run.Validate(); err != nil {
		return nil, fmt.Errorf("results table %q: %w", path, err)
	}
	return run, nil
}

// appendColumn appends the named float64 column of rec to dst. Errors are
// accumulated in *errp so one record batch can be processed in a single pass.
func appendColumn(dst []float64, rec arrow.Record, schema *arrow.Schema, name string, errp *error) []float64 {
	if *errp != nil {
		return dst
	}
	indices := schema.FieldIndices(name)
	if len(indices) == 0 {
		*errp = fmt.Errorf("%w: %q", ErrMissingColumn, name)
		return dst
	}
	col, ok := rec.Column(indices[0]).(*array.Float64)
	if !ok {
		*errp = fmt.Errorf("series: column %q is not numeric", name)
		return dst
	}
	for i := 0; i < col.Len(); i++ {
		dst = append(dst, col.Value(i))
	}
	return dst
}
