package arith

// materializeBroadcastList expands a unit-length (single outer row) list
// column into a full rows-length list column by repeating its one row's
// offsets/validity/leaf data rows times. This turns either a List-to-List
// right-broadcast pairing (normalizer.go) or a unit-length list against a
// longer primitive column (planner.go's planListPrimitive) into an ordinary
// equal-length pairing, at the cost of copying the unit row's leaf buffer
// rows times in exchange for a single shared execution path through the
// no-broadcast case.
func materializeBroadcastList(unit *Column, rows int) *Column {
	depth := unit.Depth()
	newOffsets := make([]Offsets, depth)
	newValidities := make([]*Bitmap, depth)

	// widths[d] is the element count one repetition contributes at level d.
	widths := make([]int64, depth)
	for d := 0; d < depth; d++ {
		widths[d] = unit.Offsets[d].Range()
	}

	for d := 0; d < depth; d++ {
		off := make(Offsets, rows+1)
		for i := 0; i <= rows; i++ {
			off[i] = int64(i) * widths[d]
		}
		newOffsets[d] = off

		if unit.Validities[d] == nil || unit.Validities[d].Get(0) {
			newValidities[d] = nil
		} else {
			newValidities[d] = NewBitmap(rows, false)
		}
	}

	leafRows := int(widths[depth-1])
	newLeaf := repeatLeaf(unit.Leaf, unit.Offsets[depth-1].Start(0), unit.Offsets[depth-1].Start(0)+widths[depth-1], rows, leafRows)

	return &Column{
		Name:       unit.Name,
		Offsets:    newOffsets,
		Validities: newValidities,
		Leaf:       newLeaf,
	}
}

// repeatLeaf copies leaf elements [start, end) out of src, rows times, into
// a freshly allocated Leaf of the same dtype.
func repeatLeaf(src Leaf, start, end int64, rows, unitLen int) Leaf {
	out := Leaf{Dtype: src.Dtype}
	var validity *Bitmap
	if src.Validity != nil {
		validity = NewBitmap(rows*unitLen, true)
	}

	switch src.Dtype {
	case DtypeBool:
		out.Bool = repeatSlice(src.Bool[start:end], rows)
	case DtypeInt8:
		out.Int8 = repeatSlice(src.Int8[start:end], rows)
	case DtypeInt16:
		out.Int16 = repeatSlice(src.Int16[start:end], rows)
	case DtypeInt32:
		out.Int32 = repeatSlice(src.Int32[start:end], rows)
	case DtypeInt64:
		out.Int64 = repeatSlice(src.Int64[start:end], rows)
	case DtypeFloat32:
		out.Float32 = repeatSlice(src.Float32[start:end], rows)
	case DtypeFloat64:
		out.Float64 = repeatSlice(src.Float64[start:end], rows)
	}

	if validity != nil {
		for r := 0; r < rows; r++ {
			for j := 0; j < unitLen; j++ {
				validity.Set(r*unitLen+j, src.Validity.Get(int(start)+j))
			}
		}
	}
	out.Validity = validity
	return out
}

func repeatSlice[T any](unit []T, rows int) []T {
	out := make([]T, 0, len(unit)*rows)
	for i := 0; i < rows; i++ {
		out = append(out, unit...)
	}
	return out
}

// broadcastPrimitiveValue extracts the single scalar value (by flat leaf
// index 0) out of a unit-length primitive column, for the List-to-Primitive
// right-broadcast case where the right operand never needs materializing —
// its one value is read directly once per output row.
func broadcastPrimitiveValue[T Numeric](unit Leaf) (T, bool) {
	vals := castLeaf[T](unit)
	if len(vals) == 0 {
		var zero T
		return zero, false
	}
	return vals[0], unit.Validity.AllTrue()
}
