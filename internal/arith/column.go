package arith

// Offsets is a monotone non-decreasing i64 array of length rows+1: row i
// spans the half-open range [offsets[i], offsets[i+1]) in the next-deeper
// level (or in the leaf buffer, for the innermost level).
type Offsets []int64

// Len returns the row count this offsets buffer describes.
func (o Offsets) Len() int {
	if len(o) == 0 {
		return 0
	}
	return len(o) - 1
}

// Start returns the start index of row i.
func (o Offsets) Start(i int) int64 { return o[i] }

// Width returns the number of elements row i spans.
func (o Offsets) Width(i int) int64 { return o[i+1] - o[i] }

// Range returns the total span covered by this offsets buffer — meaningful
// when it describes a single (unit-length) row used as a broadcast source.
func (o Offsets) Range() int64 { return o[len(o)-1] - o[0] }

// Leaf is the innermost contiguous primitive buffer under all list levels.
// Exactly one of the typed slices is populated, selected by Dtype.
type Leaf struct {
	Dtype Dtype

	Bool    []bool
	Int8    []int8
	Int16   []int16
	Int32   []int32
	Int64   []int64
	Float32 []float32
	Float64 []float64

	// Validity is the leaf-level null mask: one bit per leaf element, nil
	// meaning "every leaf element is valid".
	Validity *Bitmap
}

// Len returns the number of leaf elements.
func (l Leaf) Len() int {
	switch l.Dtype {
	case DtypeBool:
		return len(l.Bool)
	case DtypeInt8:
		return len(l.Int8)
	case DtypeInt16:
		return len(l.Int16)
	case DtypeInt32:
		return len(l.Int32)
	case DtypeInt64:
		return len(l.Int64)
	case DtypeFloat32:
		return len(l.Float32)
	case DtypeFloat64:
		return len(l.Float64)
	default:
		return 0
	}
}

// Column is a tree-structured columnar value: zero or more nested list
// levels (each carrying an Offsets buffer and optional per-row validity),
// terminating in a Leaf primitive buffer. A Column with zero list levels is
// a scalar-shaped ("primitive") column — its Len is the leaf length and its
// own validity lives on Leaf.Validity.
type Column struct {
	Name string

	// Offsets and Validities are parallel, ordered outermost to innermost;
	// len(Offsets) is the nesting depth. Validities[i] may be nil ("all
	// valid at this level").
	Offsets    []Offsets
	Validities []*Bitmap

	Leaf Leaf
}

// Depth returns the number of nested list levels (0 for a primitive column).
func (c *Column) Depth() int { return len(c.Offsets) }

// IsList reports whether c has at least one list level.
func (c *Column) IsList() bool { return c.Depth() > 0 }

// Dtype returns the leaf primitive dtype.
func (c *Column) Dtype() Dtype { return c.Leaf.Dtype }

// Len returns the outermost row count.
func (c *Column) Len() int {
	if c.IsList() {
		return c.Offsets[0].Len()
	}
	return c.Leaf.Len()
}

// OuterValidity returns the validity bitmap of the outermost level for a
// list column, or the leaf validity for a primitive column — i.e. the
// bitmap that governs whether row i of c itself is null.
func (c *Column) OuterValidity() *Bitmap {
	if c.IsList() {
		return c.Validities[0]
	}
	return c.Leaf.Validity
}

// Rechunk is a named no-op here: every Column built by this module already
// owns exactly one contiguous buffer per level, so there is nothing to
// consolidate. It exists so that a caller who assembled a Column by
// appending fragments elsewhere has a single, documented place to do that
// consolidation before calling Execute, mirroring the mandatory rechunk
// pass the planner expects upstream of building a plan.
func (c *Column) Rechunk() *Column { return c }

// leafRange returns the half-open [start, end) range of the flat leaf
// buffer owned transitively by outer row i, drilling through every nested
// offsets level. levels must be ordered outermost to innermost.
func leafRange(levels []Offsets, i int) (int64, int64) {
	start, end := int64(i), int64(i+1)
	for _, lvl := range levels {
		start, end = lvl[start], lvl[end]
	}
	return start, end
}

// leafRangeIterator calls fn(i, start, end) for every outer row i of a list
// value described by levels (outermost to innermost), where [start, end) is
// the flat leaf index range row i owns transitively.
func leafRangeIterator(levels []Offsets, fn func(i int, start, end int64)) {
	rows := levels[0].Len()
	for i := 0; i < rows; i++ {
		start, end := leafRange(levels, i)
		fn(i, start, end)
	}
}
