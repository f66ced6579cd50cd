package arith

// combineValiditiesListToPrimitiveNoBroadcast intersects a list column's
// outer-row validity with a same-length primitive column's per-row
// validity, broadcasting the primitive row's single validity bit across
// every leaf element that row's list owns.
func combineValiditiesListToPrimitiveNoBroadcast(lhs *Column, rhsPrimitiveValidity *Bitmap) (outer []*Bitmap, leaf *Bitmap) {
	depth := lhs.Depth()
	outer = make([]*Bitmap, depth)
	outer[0] = combineAnd(lhs.Validities[0], rhsPrimitiveValidity, lhs.Offsets[0].Len())
	for d := 1; d < depth; d++ {
		outer[d] = lhs.Validities[d].Clone()
	}

	leaf = lhs.Leaf.Validity.Clone()
	if leaf == nil {
		leaf = NewBitmap(lhs.Leaf.Len(), true)
	}
	leafRangeIterator(lhs.Offsets, func(i int, start, end int64) {
		valid := rhsPrimitiveValidity.Get(i)
		if valid {
			return
		}
		for j := start; j < end; j++ {
			leaf.Set(int(j), false)
		}
	})
	return outer, leaf
}
