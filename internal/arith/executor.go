package arith

// Execute runs op elementwise over lhs and rhs, handling every shape
// pairing the planner recognizes: equal-length list columns, a list column
// against a unit-row list or primitive column (broadcast), and a list
// column against an equal-length primitive column (one scalar per row).
// The output dtype is the supertype of both leaf dtypes, promoted to
// Float64 when op is Div and that supertype is integral.
func Execute(op Op, lhs, rhs *Column) (*Column, error) {
	p, err := buildPlan(op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	p = normalize(p)

	leafSuper, err := Supertype(p.lhs.Dtype(), p.rhs.Dtype())
	if err != nil {
		return nil, err
	}
	outDtype := outputDtype(op, leafSuper)
	// Div always promotes an integral leafSuper to Float64, but a zero
	// integer denominator must still null its output — the promotion
	// changes the output's representation, not whether the division was
	// well-defined, so denominator sanitization keys off leafSuper, not
	// outDtype.
	nullOnZeroDenominator := op.IsDivision() && leafSuper.IsIntegral()

	switch outDtype {
	case DtypeInt8:
		return executeTyped[int8](p, outDtype, nullOnZeroDenominator)
	case DtypeInt16:
		return executeTyped[int16](p, outDtype, nullOnZeroDenominator)
	case DtypeInt32:
		return executeTyped[int32](p, outDtype, nullOnZeroDenominator)
	case DtypeInt64:
		return executeTyped[int64](p, outDtype, nullOnZeroDenominator)
	case DtypeFloat32:
		return executeTyped[float32](p, outDtype, nullOnZeroDenominator)
	case DtypeFloat64:
		return executeTyped[float64](p, outDtype, nullOnZeroDenominator)
	default:
		return nil, invalidOperationf("cannot derive an output dtype for %s between %s and %s", op, lhs.Dtype(), rhs.Dtype())
	}
}

func executeTyped[T Numeric](p *plan, outDtype Dtype, nullOnZeroDenominator bool) (*Column, error) {
	switch p.kind {
	case caseListToListNoBroadcast:
		return executeListToList[T](p, outDtype, nullOnZeroDenominator)
	case caseListToPrimitiveNoBroadcast:
		return executeListToPrimitive[T](p, outDtype, nullOnZeroDenominator, false)
	case caseListToPrimitiveBroadcastRight:
		return executeListToPrimitive[T](p, outDtype, nullOnZeroDenominator, true)
	default:
		return nil, invalidOperationf("unreachable execution case")
	}
}

// executeListToList drives Case 1: two list columns of identical outer row
// count. Rows themselves may still be ragged (different transitive leaf
// widths) as long as at least one side is null at that row — a width
// mismatch between two valid rows is a ShapeMismatch error, but a mismatch
// under a null row is tolerated since the output row is null regardless.
func executeListToList[T Numeric](p *plan, outDtype Dtype, nullOnZeroDenominator bool) (*Column, error) {
	lhs, rhs := p.lhs, p.rhs
	rows := lhs.Len()

	l := castLeaf[T](lhs.Leaf)
	r := castLeaf[T](rhs.Leaf)
	lane := numKernelOf[T]().lane(p.op)

	leafLen := lhs.Leaf.Len()
	out := make([]T, leafLen)
	leafValidity := lhs.Leaf.Validity.Clone()
	if leafValidity == nil {
		leafValidity = NewBitmap(leafLen, true)
	}

	lhsOuter, rhsOuter := lhs.Validities[0], rhs.Validities[0]
	outer := make([]*Bitmap, lhs.Depth())
	outer[0] = combineAnd(lhsOuter, rhsOuter, rows)
	for d := 1; d < lhs.Depth(); d++ {
		outer[d] = lhs.Validities[d].Clone()
	}

	for i := 0; i < rows; i++ {
		lStart, lEnd := leafRange(lhs.Offsets, i)
		lRowNull := lhsOuter != nil && !lhsOuter.Get(i)
		rRowNull := rhsOuter != nil && !rhsOuter.Get(i)

		if lRowNull || rRowNull {
			for j := lStart; j < lEnd; j++ {
				leafValidity.Set(int(j), false)
			}
			continue
		}

		rStart, rEnd := leafRange(rhs.Offsets, i)
		if (lEnd - lStart) != (rEnd - rStart) {
			return nil, shapeMismatchf("row %d: widths %d and %d do not align", i, lEnd-lStart, rEnd-rStart)
		}

		for j, k := lStart, rStart; j < lEnd; j, k = j+1, k+1 {
			num, den := l[j], r[k]
			if p.swapped {
				num, den = den, num
			}
			if lhs.Leaf.Validity != nil && !lhs.Leaf.Validity.Get(int(j)) {
				leafValidity.Set(int(j), false)
			}
			if rhs.Leaf.Validity != nil && !rhs.Leaf.Validity.Get(int(k)) {
				leafValidity.Set(int(j), false)
			}
			if nullOnZeroDenominator && isZero(den) {
				leafValidity.Set(int(j), false)
				continue
			}
			out[j] = lane(num, den)
		}
	}

	leaf := leafAsColumn(outDtype, out, leafValidity)
	return &Column{
		Name:       p.resultName,
		Offsets:    lhs.Offsets,
		Validities: outer,
		Leaf:       leaf,
	}, nil
}

// executeListToPrimitive drives Cases 3 and 4: a list column against a
// primitive column carrying either one value per row (unitRHS == false) or
// a single scalar broadcast across every row (unitRHS == true).
func executeListToPrimitive[T Numeric](p *plan, outDtype Dtype, nullOnZeroDenominator, unitRHS bool) (*Column, error) {
	list := p.lhs
	leafLen := list.Leaf.Len()
	l := castLeaf[T](list.Leaf)
	lane := numKernelOf[T]().lane(p.op)

	out := make([]T, leafLen)

	if unitRHS {
		scalar, scalarValid := broadcastPrimitiveValue[T](p.rhs.Leaf)
		denomZero := nullOnZeroDenominator && !p.swapped && isZero(scalar)
		rowValid := scalarValid && !denomZero

		for i := range out {
			if !rowValid || (p.swapped && nullOnZeroDenominator && isZero(l[i])) {
				continue
			}
			if p.swapped {
				out[i] = lane(scalar, l[i])
			} else {
				out[i] = lane(l[i], scalar)
			}
		}

		leaf := list.Leaf.Validity.Clone()
		if leaf == nil {
			leaf = NewBitmap(leafLen, true)
		}
		if !rowValid {
			leaf = NewBitmap(leafLen, false)
		}
		if p.swapped && nullOnZeroDenominator {
			leaf = sanitizeDenominatorLeaf(l, leaf)
		}
		outer := propagateOuterValidity(list, leaf)
		return &Column{Name: p.resultName, Offsets: list.Offsets, Validities: outer, Leaf: leafAsColumn(outDtype, out, leaf)}, nil
	}

	primitive := castLeaf[T](p.rhs.Leaf)
	rhsValidity := p.rhs.Leaf.Validity
	if rhsValidity == nil {
		rhsValidity = NewBitmap(len(primitive), true)
	}

	leafRangeIterator(list.Offsets, func(i int, start, end int64) {
		for j := start; j < end; j++ {
			num, den := l[j], primitive[i]
			if p.swapped {
				num, den = den, num
			}
			if nullOnZeroDenominator && isZero(den) {
				continue
			}
			out[j] = lane(num, den)
		}
	})

	effectiveRHSValidity := rhsValidity
	if nullOnZeroDenominator && !p.swapped {
		effectiveRHSValidity = sanitizeDenominatorLeaf(primitive, rhsValidity.Clone())
	}

	outer, leaf := combineValiditiesListToPrimitiveNoBroadcast(list, effectiveRHSValidity)
	if nullOnZeroDenominator && p.swapped {
		leaf = sanitizeDenominatorLeaf(l, leaf)
	}
	return &Column{
		Name:       p.resultName,
		Offsets:    list.Offsets,
		Validities: outer,
		Leaf:       leafAsColumn(outDtype, out, leaf),
	}, nil
}

// propagateOuterValidity returns a clone of list's own per-level validity
// and ANDs list's outer-row validity down into leaf in place.
func propagateOuterValidity(list *Column, leaf *Bitmap) []*Bitmap {
	depth := list.Depth()
	outer := make([]*Bitmap, depth)
	for d := 0; d < depth; d++ {
		outer[d] = list.Validities[d].Clone()
		if outer[d] == nil {
			continue
		}
		leafRangeIterator(list.Offsets[d:], func(i int, start, end int64) {
			if outer[d].Get(i) {
				return
			}
			for j := start; j < end; j++ {
				leaf.Set(int(j), false)
			}
		})
	}
	return outer
}

// sanitizeDenominatorLeaf nulls every leaf position whose integer
// denominator r is zero, merging into (and returning) validity.
func sanitizeDenominatorLeaf[T Numeric](r []T, validity *Bitmap) *Bitmap {
	out := validity
	if out == nil {
		out = NewBitmap(len(r), true)
	}
	for i, v := range r {
		if isZero(v) {
			out.Set(i, false)
		}
	}
	return out
}
