package scenario

import (
	"fmt"

	"vectra/internal/arith"
	"vectra/internal/sqlsource"
)

// RegisterBuiltins registers the engine's concrete reference scenarios and
// quantified properties with r.
func RegisterBuiltins(r *Runner) {
	registerConcreteScenarios(r)
	registerProperties(r)
}

func col(name, json string) *arith.Column {
	c, err := sqlsource.ColumnFromJSON(name, json)
	if err != nil {
		panic(fmt.Sprintf("scenario: bad literal %q: %v", json, err))
	}
	return c
}

func expectJSON(op arith.Op, lhsJSON, rhsJSON, wantJSON string) error {
	lhs := col("lhs", lhsJSON)
	rhs := col("rhs", rhsJSON)
	got, err := arith.Execute(op, lhs, rhs)
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	gotJSON := sqlsource.ColumnToJSON(got)
	if gotJSON != wantJSON {
		return fmt.Errorf("got %s, want %s", gotJSON, wantJSON)
	}
	return nil
}

func registerConcreteScenarios(r *Runner) {
	r.Register("list-list aligned add", func() error {
		return expectJSON(arith.OpAdd, "[[1,2],[3,4]]", "[[10,20],[30,40]]", "[[11,22],[33,44]]")
	})

	r.Register("list-scalar broadcast mul", func() error {
		return expectJSON(arith.OpMul, "[[1,2],[3]]", "10", "[[10,20],[30]]")
	})

	r.Register("outer null on lhs", func() error {
		return expectJSON(arith.OpAdd, "[[1,2],null]", "[[5,6],[7,8]]", "[[6,8],null]")
	})

	r.Register("width mismatch errors", func() error {
		lhs := col("lhs", "[[1,2],[3]]")
		rhs := col("rhs", "[[1,2],[3,4]]")
		_, err := arith.Execute(arith.OpAdd, lhs, rhs)
		if err == nil {
			return fmt.Errorf("expected a ShapeMismatch error")
		}
		ee, ok := err.(*arith.EngineError)
		if !ok || ee.Kind != arith.KindShapeMismatch {
			return fmt.Errorf("expected a ShapeMismatch EngineError, got %v", err)
		}
		return nil
	})

	r.Register("width mismatch tolerated under outer null", func() error {
		return expectJSON(arith.OpAdd, "[[1,2],null]", "[[1,2],[3,4,5]]", "[[2,4],null]")
	})

	r.Register("integer divide by zero nulls and promotes to float", func() error {
		lhs := col("lhs", "[[10,20],[30]]")
		rhs := col("rhs", "[[2,0],[5]]")
		got, err := arith.Execute(arith.OpDiv, lhs, rhs)
		if err != nil {
			return err
		}
		if got.Dtype() != arith.DtypeFloat64 {
			return fmt.Errorf("expected Float64 output dtype, got %s", got.Dtype())
		}
		if got.Leaf.Validity == nil || got.Leaf.Validity.Get(1) {
			return fmt.Errorf("expected leaf index 1 (zero denominator) to be null")
		}
		return nil
	})

	r.Register("unit-list broadcast left", func() error {
		return expectJSON(arith.OpAdd, "[[1,2]]", "[[10,20],[30,40]]", "[[11,22],[31,42]]")
	})

	r.Register("deeply nested add", func() error {
		return expectJSON(arith.OpAdd, "[[[1,2]],[[3],[4,5]]]", "[[[10,20]],[[30],[40,50]]]", "[[[11,22]],[[33],[44,55]]]")
	})

	r.Register("unit-list broadcast against longer primitive", func() error {
		return expectJSON(arith.OpAdd, "[[5]]", "[1,2,3]", "[[6],[7],[8]]")
	})
}

func registerProperties(r *Runner) {
	r.Register("property: shape preservation", func() error {
		lhs := col("lhs", "[[1,2,3],[4]]")
		rhs := col("rhs", "[[10,20,30],[40]]")
		got, err := arith.Execute(arith.OpAdd, lhs, rhs)
		if err != nil {
			return err
		}
		if got.Depth() != lhs.Depth() || got.Len() != lhs.Len() {
			return fmt.Errorf("output shape does not match lhs shape")
		}
		for i := 0; i < lhs.Len(); i++ {
			if got.Offsets[0].Width(i) != lhs.Offsets[0].Width(i) {
				return fmt.Errorf("row %d width diverged from lhs", i)
			}
		}
		return nil
	})

	r.Register("property: broadcast symmetry for commutative ops", func() error {
		a := col("a", "[[1,2],[3,4]]")
		b := col("b", "[[5,6],[7,8]]")
		ab, err := arith.Execute(arith.OpAdd, a, b)
		if err != nil {
			return err
		}
		ba, err := arith.Execute(arith.OpAdd, b, a)
		if err != nil {
			return err
		}
		if sqlsource.ColumnToJSON(ab) != sqlsource.ColumnToJSON(ba) {
			return fmt.Errorf("add is not symmetric: %s vs %s", sqlsource.ColumnToJSON(ab), sqlsource.ColumnToJSON(ba))
		}
		return nil
	})

	r.Register("property: operand swap for non-commutative ops", func() error {
		a := col("a", "[[10,20]]")
		b := col("b", "[[3,4]]")
		ab, err := arith.Execute(arith.OpSub, a, b)
		if err != nil {
			return err
		}
		ba, err := arith.Execute(arith.OpSub, b, a)
		if err != nil {
			return err
		}
		for i, v := range ab.Leaf.Int64 {
			if v != -ba.Leaf.Int64[i] {
				return fmt.Errorf("sub(a,b) != -sub(b,a) at index %d", i)
			}
		}
		return nil
	})

	r.Register("property: additive and multiplicative identities", func() error {
		a := col("a", "[[1,2,3]]")
		zero := col("zero", "0")
		one := col("one", "1")

		plusZero, err := arith.Execute(arith.OpAdd, a, zero)
		if err != nil {
			return err
		}
		if sqlsource.ColumnToJSON(plusZero) != sqlsource.ColumnToJSON(a) {
			return fmt.Errorf("a+0 != a")
		}

		timesOne, err := arith.Execute(arith.OpMul, a, one)
		if err != nil {
			return err
		}
		if sqlsource.ColumnToJSON(timesOne) != sqlsource.ColumnToJSON(a) {
			return fmt.Errorf("a*1 != a")
		}

		minusZero, err := arith.Execute(arith.OpSub, a, zero)
		if err != nil {
			return err
		}
		if sqlsource.ColumnToJSON(minusZero) != sqlsource.ColumnToJSON(a) {
			return fmt.Errorf("a-0 != a")
		}
		return nil
	})

	r.Register("property: add/sub round-trip", func() error {
		a := col("a", "[[5,12],[7]]")
		b := col("b", "[[3,4],[2]]")

		sum, err := arith.Execute(arith.OpAdd, a, b)
		if err != nil {
			return err
		}
		back, err := arith.Execute(arith.OpSub, sum, b)
		if err != nil {
			return err
		}
		if sqlsource.ColumnToJSON(back) != sqlsource.ColumnToJSON(a) {
			return fmt.Errorf("(a+b)-b != a: got %s, want %s", sqlsource.ColumnToJSON(back), sqlsource.ColumnToJSON(a))
		}
		return nil
	})
}
