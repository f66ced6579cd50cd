package arith

import "testing"

// primCol builds a depth-0 (primitive) Int64 column.
func primCol(name string, vals []int64, validity *Bitmap) *Column {
	return &Column{
		Name: name,
		Leaf: Leaf{Dtype: DtypeInt64, Int64: vals, Validity: validity},
	}
}

// listCol builds a depth-1 Int64 list column from a jagged [][]int64.
func listCol(name string, rows [][]int64) *Column {
	off := make(Offsets, len(rows)+1)
	var flat []int64
	for i, r := range rows {
		flat = append(flat, r...)
		off[i+1] = off[i] + int64(len(r))
	}
	return &Column{
		Name:       name,
		Offsets:    []Offsets{off},
		Validities: []*Bitmap{nil},
		Leaf:       Leaf{Dtype: DtypeInt64, Int64: flat},
	}
}

func flatInt64(c *Column) []int64 { return c.Leaf.Int64 }

func TestExecuteListToListNoBroadcast(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		a, b [][]int64
		want []int64
	}{
		{"add", OpAdd, [][]int64{{1, 2}, {3}}, [][]int64{{10, 20}, {30}}, []int64{11, 22, 33}},
		{"sub", OpSub, [][]int64{{5, 5}}, [][]int64{{1, 2}}, []int64{4, 3}},
		{"mul", OpMul, [][]int64{{2, 3}}, [][]int64{{4, 5}}, []int64{8, 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Execute(tt.op, listCol("a", tt.a), listCol("b", tt.b))
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if !int64SliceEq(flatInt64(got), tt.want) {
				t.Errorf("got %v, want %v", flatInt64(got), tt.want)
			}
		})
	}
}

func TestExecuteListToListBroadcastRight(t *testing.T) {
	a := listCol("a", [][]int64{{1, 2}, {3, 4}, {5, 6}})
	b := listCol("b", [][]int64{{10, 100}})

	got, err := Execute(OpAdd, a, b)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []int64{11, 102, 13, 104, 15, 106}
	if !int64SliceEq(flatInt64(got), want) {
		t.Errorf("got %v, want %v", flatInt64(got), want)
	}
	if got.Len() != 3 {
		t.Errorf("got.Len() = %d, want 3", got.Len())
	}
}

func TestExecuteListBroadcastLeftAgainstLongerPrimitive(t *testing.T) {
	l := listCol("l", [][]int64{{5}})
	p := primCol("p", []int64{1, 2, 3}, nil)

	got, err := Execute(OpAdd, l, p)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []int64{6, 7, 8}
	if !int64SliceEq(flatInt64(got), want) {
		t.Errorf("got %v, want %v", flatInt64(got), want)
	}
	if got.Len() != 3 {
		t.Errorf("got.Len() = %d, want 3", got.Len())
	}
}

func TestExecuteResultNameInheritsCallerLHS(t *testing.T) {
	t.Run("list-primitive swapped internally", func(t *testing.T) {
		prim := primCol("lhsName", []int64{1, 2}, nil)
		list := listCol("rhsName", [][]int64{{10}, {20}})
		got, err := Execute(OpAdd, prim, list)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got.Name != "lhsName" {
			t.Errorf("Name = %q, want %q", got.Name, "lhsName")
		}
	})

	t.Run("list-list broadcast-left swapped internally", func(t *testing.T) {
		unit := listCol("lhsName", [][]int64{{1, 2}})
		full := listCol("rhsName", [][]int64{{10, 20}, {30, 40}})
		got, err := Execute(OpAdd, unit, full)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got.Name != "lhsName" {
			t.Errorf("Name = %q, want %q", got.Name, "lhsName")
		}
	})

	t.Run("list unit-broadcast against longer primitive", func(t *testing.T) {
		list := listCol("lhsName", [][]int64{{5}})
		prim := primCol("rhsName", []int64{1, 2, 3}, nil)
		got, err := Execute(OpAdd, list, prim)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got.Name != "lhsName" {
			t.Errorf("Name = %q, want %q", got.Name, "lhsName")
		}
	})
}

func TestExecuteListToPrimitiveNoBroadcast(t *testing.T) {
	a := listCol("a", [][]int64{{1, 2}, {3, 4, 5}})
	scalars := primCol("s", []int64{10, 100}, nil)

	got, err := Execute(OpMul, a, scalars)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []int64{10, 20, 300, 400, 500}
	if !int64SliceEq(flatInt64(got), want) {
		t.Errorf("got %v, want %v", flatInt64(got), want)
	}
}

func TestExecuteListToPrimitiveBroadcastRightScalar(t *testing.T) {
	a := listCol("a", [][]int64{{1, 2}, {3}})
	scalar := primCol("s", []int64{2}, nil)

	got, err := Execute(OpMul, a, scalar)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []int64{2, 4, 6}
	if !int64SliceEq(flatInt64(got), want) {
		t.Errorf("got %v, want %v", flatInt64(got), want)
	}
}

func TestExecuteDivPromotesIntegralToFloat64(t *testing.T) {
	a := listCol("a", [][]int64{{1, 3}})
	b := listCol("b", [][]int64{{2, 2}})

	got, err := Execute(OpDiv, a, b)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Dtype() != DtypeFloat64 {
		t.Fatalf("Dtype() = %s, want Float64", got.Dtype())
	}
	want := []float64{0.5, 1.5}
	if !float64SliceEq(got.Leaf.Float64, want) {
		t.Errorf("got %v, want %v", got.Leaf.Float64, want)
	}
}

func TestExecuteIntegerDivisionByZeroNullsNotPanics(t *testing.T) {
	a := listCol("a", [][]int64{{10, 20, 30}})
	b := listCol("b", [][]int64{{5, 0, 10}})

	got, err := Execute(OpFloorDiv, a, b)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Leaf.Validity == nil {
		t.Fatalf("expected a validity mask nulling the zero-denominator lane")
	}
	if got.Leaf.Validity.Get(1) {
		t.Errorf("index 1 (denominator 0) should be null")
	}
	if !got.Leaf.Validity.Get(0) || !got.Leaf.Validity.Get(2) {
		t.Errorf("non-zero-denominator lanes should remain valid")
	}
}

func TestExecuteScalarZeroDenominatorNullsEveryOutput(t *testing.T) {
	a := listCol("a", [][]int64{{10, 20}, {30}})
	zero := primCol("zero", []int64{0}, nil)

	got, err := Execute(OpDiv, a, zero)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for i := 0; i < got.Leaf.Len(); i++ {
		if got.Leaf.Validity == nil || got.Leaf.Validity.Get(i) {
			t.Errorf("index %d: expected null from zero scalar denominator", i)
		}
	}
}

func TestExecuteShapeMismatchErrors(t *testing.T) {
	a := listCol("a", [][]int64{{1}, {2}, {3}})
	b := listCol("b", [][]int64{{1}, {2}})

	_, err := Execute(OpAdd, a, b)
	if err == nil {
		t.Fatal("expected a shape mismatch error")
	}
	var engineErr *EngineError
	if !asEngineError(err, &engineErr) {
		t.Fatalf("error is not an *EngineError: %v", err)
	}
	if engineErr.Kind != KindShapeMismatch {
		t.Errorf("Kind = %s, want ShapeMismatch", engineErr.Kind)
	}
}

func TestExecuteRaggedRowWidthMismatchErrors(t *testing.T) {
	a := listCol("a", [][]int64{{1, 2}, {3}})
	b := listCol("b", [][]int64{{1, 2}, {3, 4}})

	_, err := Execute(OpAdd, a, b)
	if err == nil {
		t.Fatal("expected a shape mismatch error naming the mismatched row")
	}
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != KindShapeMismatch {
		t.Fatalf("expected a ShapeMismatch EngineError, got %v", err)
	}
}

func TestExecuteRaggedRowWidthToleratedUnderNull(t *testing.T) {
	a := listCol("a", [][]int64{{1, 2}, {}})
	a.Validities[0] = NewBitmapFrom([]bool{true, false})
	b := listCol("b", [][]int64{{1, 2}, {3, 4, 5}})

	got, err := Execute(OpAdd, a, b)
	if err != nil {
		t.Fatalf("expected the row-width mismatch under a null row to be tolerated, got error: %v", err)
	}
	want := []int64{2, 4}
	if !int64SliceEq(flatInt64(got), want) {
		t.Errorf("got %v, want %v", flatInt64(got), want)
	}
	if got.Validities[0] == nil || got.Validities[0].Get(1) {
		t.Errorf("row 1 should remain null in the output")
	}
}

func TestExecuteOuterNullRowPropagatesToLeaf(t *testing.T) {
	a := listCol("a", [][]int64{{1, 2}, {3, 4}})
	a.Validities[0] = NewBitmapFrom([]bool{true, false})
	b := listCol("b", [][]int64{{10, 10}, {10, 10}})

	got, err := Execute(OpAdd, a, b)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Leaf.Validity.Get(2) || got.Leaf.Validity.Get(3) {
		t.Errorf("leaf positions under a null outer row must be null")
	}
	if !got.Leaf.Validity.Get(0) || !got.Leaf.Validity.Get(1) {
		t.Errorf("leaf positions under a valid outer row must stay valid")
	}
}

func int64SliceEq(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func float64SliceEq(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func asEngineError(err error, out **EngineError) bool {
	ee, ok := err.(*EngineError)
	if ok {
		*out = ee
	}
	return ok
}
