package sqlsource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"vectra/internal/arith"
	vectraerrors "vectra/internal/errors"
)

// ColumnFromJSON decodes a single JSON document into an arith.Column. A
// top-level array is treated as one row per element (possibly further
// nested); a bare scalar (e.g. "10") is treated as a single-row column —
// the shape a unit-broadcast right-hand operand takes. This is the form
// the "vectra exec" CLI command and the HTTP/WebSocket API accept for
// their operands.
func ColumnFromJSON(name, raw string) (*arith.Column, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, vectraerrors.NewValidationError(fmt.Sprintf("invalid JSON operand: %v", err), name, "parse").WithDetail(raw)
	}

	rows, ok := v.([]interface{})
	if !ok {
		rows = []interface{}{v}
	}
	return buildColumnFromValues(name, rows)
}

// columnFromJSONRows decodes one JSON value per SQL row (each string in raw
// independently parsed) into a single arith.Column, the shape
// Source.QueryColumn needs.
func columnFromJSONRows(name string, raw []string) (*arith.Column, error) {
	rows := make([]interface{}, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			s = "null"
		}
		var v interface{}
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, vectraerrors.NewValidationError(fmt.Sprintf("invalid JSON in row %d: %v", i, err), name, "ingest").AtRow(i)
		}
		rows[i] = v
	}
	return buildColumnFromValues(name, rows)
}

// buildColumnFromValues turns decoded JSON values (float64, []interface{},
// or nil, from encoding/json's generic decoding) into an arith.Column. The
// nesting depth is taken from the first non-null row and every row must
// agree with it — rows themselves may still be ragged (different lengths),
// only the depth of nesting must be uniform.
func buildColumnFromValues(name string, rows []interface{}) (*arith.Column, error) {
	depth := valueDepth(rows)

	if depth == 0 {
		return buildPrimitiveColumn(name, rows)
	}
	return buildListColumn(name, rows, depth)
}

// valueDepth returns the list nesting depth implied by the first non-null
// row: 0 for a column of plain numbers, 1 for a column of number lists, etc.
func valueDepth(rows []interface{}) int {
	for _, r := range rows {
		if r == nil {
			continue
		}
		d := 0
		for {
			arr, ok := r.([]interface{})
			if !ok {
				return d
			}
			d++
			if len(arr) == 0 {
				return d
			}
			r = arr[0]
		}
	}
	return 0
}

func buildPrimitiveColumn(name string, rows []interface{}) (*arith.Column, error) {
	vals := make([]float64, len(rows))
	var validity *arith.Bitmap
	for i, r := range rows {
		if r == nil {
			if validity == nil {
				validity = arith.NewBitmap(len(rows), true)
			}
			validity.Set(i, false)
			continue
		}
		f, ok := r.(float64)
		if !ok {
			return nil, vectraerrors.NewValidationError(fmt.Sprintf("expected a number, got %T", r), name, "parse").AtRow(i)
		}
		vals[i] = f
	}
	return &arith.Column{
		Name: name,
		Leaf: floatToLeaf(vals, validity),
	}, nil
}

// floatToLeaf picks Int64 when every valid value is a whole number within
// int64 range, matching the JSON text a test literal or SQL JSON column
// typically writes for integer data, and falls back to Float64 otherwise.
// JSON itself carries no int/float distinction, so this mirrors the
// heuristic a schema-less ingestion path has to apply at the boundary.
func floatToLeaf(vals []float64, validity *arith.Bitmap) arith.Leaf {
	allIntegral := true
	for i, v := range vals {
		if validity != nil && !validity.Get(i) {
			continue
		}
		if v != float64(int64(v)) {
			allIntegral = false
			break
		}
	}
	if !allIntegral {
		return arith.Leaf{Dtype: arith.DtypeFloat64, Float64: vals, Validity: validity}
	}
	ints := make([]int64, len(vals))
	for i, v := range vals {
		ints[i] = int64(v)
	}
	return arith.Leaf{Dtype: arith.DtypeInt64, Int64: ints, Validity: validity}
}

func buildListColumn(name string, rows []interface{}, depth int) (*arith.Column, error) {
	offsets := make([]arith.Offsets, depth)
	validities := make([]*arith.Bitmap, depth)
	for d := range offsets {
		offsets[d] = arith.Offsets{0}
	}

	var leaf []float64
	var leafValidity *arith.Bitmap

	var walk func(level int, v interface{}) error
	walk = func(level int, v interface{}) error {
		if level == depth {
			if v == nil {
				if leafValidity == nil {
					leafValidity = arith.NewBitmap(len(leaf), true)
				}
				leaf = append(leaf, 0)
				leafValidity.Set(len(leaf)-1, false)
				return nil
			}
			f, ok := v.(float64)
			if !ok {
				return fmt.Errorf("expected a number at leaf level, got %T", v)
			}
			if leafValidity != nil {
				leafValidity.Set(len(leaf), true)
			}
			leaf = append(leaf, f)
			return nil
		}

		if v == nil {
			if validities[level] == nil {
				validities[level] = arith.NewBitmap(offsets[level].Len(), true)
			}
			offsets[level] = append(offsets[level], offsets[level][len(offsets[level])-1])
			validities[level].Set(offsets[level].Len()-1, false)
			return nil
		}

		arr, ok := v.([]interface{})
		if !ok {
			return fmt.Errorf("expected a nested array at level %d, got %T", level, v)
		}
		for _, child := range arr {
			if err := walk(level+1, child); err != nil {
				return err
			}
		}
		offsets[level] = append(offsets[level], offsets[level][len(offsets[level])-1]+int64(len(arr)))
		if validities[level] != nil {
			validities[level].Set(offsets[level].Len()-1, true)
		}
		return nil
	}

	for i, r := range rows {
		if err := walk(0, r); err != nil {
			return nil, vectraerrors.NewValidationError(err.Error(), name, "parse").AtRow(i)
		}
	}

	// growing validity bitmaps lazily (above) leaves earlier rows
	// implicitly valid; resize them up to the final row count.
	for d := range validities {
		if validities[d] != nil && validities[d].Len() < offsets[d].Len() {
			grown := arith.NewBitmap(offsets[d].Len(), true)
			for i := 0; i < validities[d].Len(); i++ {
				grown.Set(i, validities[d].Get(i))
			}
			validities[d] = grown
		}
	}
	if leafValidity != nil && leafValidity.Len() < len(leaf) {
		grown := arith.NewBitmap(len(leaf), true)
		for i := 0; i < leafValidity.Len(); i++ {
			grown.Set(i, leafValidity.Get(i))
		}
		leafValidity = grown
	}

	return &arith.Column{
		Name:       name,
		Offsets:    offsets,
		Validities: validities,
		Leaf:       floatToLeaf(leaf, leafValidity),
	}, nil
}

// ColumnToJSON renders col back into the same nested-array-per-row JSON
// shape ColumnFromJSON accepts, formatting floats without trailing zeros
// where the value is integral so scenario output reads cleanly.
func ColumnToJSON(col *arith.Column) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < col.Len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeRowJSON(&sb, col, 0, i)
	}
	sb.WriteByte(']')
	return sb.String()
}

func writeRowJSON(sb *strings.Builder, col *arith.Column, level, i int) {
	if level == col.Depth() {
		writeLeafJSON(sb, col.Leaf, i)
		return
	}
	if col.Validities[level] != nil && !col.Validities[level].Get(i) {
		sb.WriteString("null")
		return
	}
	start, end := col.Offsets[level].Start(i), col.Offsets[level].Start(i)+col.Offsets[level].Width(i)
	sb.WriteByte('[')
	for j := start; j < end; j++ {
		if j > start {
			sb.WriteByte(',')
		}
		writeRowJSON(sb, col, level+1, int(j))
	}
	sb.WriteByte(']')
}

func writeLeafJSON(sb *strings.Builder, leaf arith.Leaf, i int) {
	if leaf.Validity != nil && !leaf.Validity.Get(i) {
		sb.WriteString("null")
		return
	}
	switch leaf.Dtype {
	case arith.DtypeFloat64:
		sb.WriteString(strconv.FormatFloat(leaf.Float64[i], 'g', -1, 64))
	case arith.DtypeFloat32:
		sb.WriteString(strconv.FormatFloat(float64(leaf.Float32[i]), 'g', -1, 32))
	case arith.DtypeInt64:
		sb.WriteString(strconv.FormatInt(leaf.Int64[i], 10))
	case arith.DtypeInt32:
		sb.WriteString(strconv.FormatInt(int64(leaf.Int32[i]), 10))
	case arith.DtypeInt16:
		sb.WriteString(strconv.FormatInt(int64(leaf.Int16[i]), 10))
	case arith.DtypeInt8:
		sb.WriteString(strconv.FormatInt(int64(leaf.Int8[i]), 10))
	case arith.DtypeBool:
		sb.WriteString(strconv.FormatBool(leaf.Bool[i]))
	default:
		sb.WriteString("null")
	}
}
