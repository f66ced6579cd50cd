package arith

// caseKind identifies one of the four shapes the planner classifies a
// pairing into; the normalizer rewrites caseListToListBroadcastRight away,
// so the executor only ever runs the other three.
type caseKind byte

const (
	caseListToListNoBroadcast caseKind = iota
	caseListToListBroadcastRight
	caseListToPrimitiveNoBroadcast
	caseListToPrimitiveBroadcastRight
)

// plan is the planner's output: everything the normalizer and executor need
// to run op over lhs and rhs without re-deriving shape facts.
type plan struct {
	op         Op
	lhs, rhs   *Column
	swapped    bool
	kind       caseKind
	rows       int
	allNull    bool
	resultName string
}

// buildPlan classifies the shapes of lhs and rhs, validates they are
// arithmetic-compatible, and decides which of the four canonical cases (and
// whether operands must swap) the normalizer should produce. It never
// mutates lhs or rhs. The output always inherits the caller's original lhs
// name, so it is captured here once, before any internal swap or broadcast
// rewrite has a chance to make p.lhs refer to the caller's rhs instead.
func buildPlan(op Op, lhs, rhs *Column) (*plan, error) {
	if !lhs.Dtype().IsNumeric() || !rhs.Dtype().IsNumeric() {
		return nil, invalidOperationf("cannot apply %s to non-numeric leaf dtypes %s and %s", op, lhs.Dtype(), rhs.Dtype())
	}

	lList, rList := lhs.IsList(), rhs.IsList()

	var p *plan
	var err error
	switch {
	case lList && rList:
		p, err = planListList(op, lhs, rhs)
	case lList && !rList:
		p, err = planListPrimitive(op, lhs, rhs, false)
	case !lList && rList:
		p, err = planListPrimitive(op, rhs, lhs, true)
	default:
		p, err = planPrimitivePrimitive(op, lhs, rhs)
	}
	if err != nil {
		return nil, err
	}
	p.resultName = lhs.Name
	return p, nil
}

func planListList(op Op, lhs, rhs *Column) (*plan, error) {
	ll, rl := lhs.Len(), rhs.Len()
	switch {
	case ll == rl:
		return &plan{op: op, lhs: lhs, rhs: rhs, kind: caseListToListNoBroadcast, rows: ll}, nil
	case rl == 1:
		return &plan{op: op, lhs: lhs, rhs: rhs, kind: caseListToListBroadcastRight, rows: ll}, nil
	case ll == 1:
		return &plan{op: op, lhs: rhs, rhs: lhs, swapped: true, kind: caseListToListBroadcastRight, rows: rl}, nil
	default:
		return nil, shapeMismatchf("list columns of length %d and %d cannot be broadcast together", ll, rl)
	}
}

// planListPrimitive always returns a plan where p.lhs is the list operand
// and p.rhs is the primitive operand; originallySwapped records whether the
// caller's (lhs, rhs) had the primitive on the left, so the executor knows
// to reverse operand order inside each scalar lane for non-commutative ops.
func planListPrimitive(op Op, list, primitive *Column, originallySwapped bool) (*plan, error) {
	ll, pl := list.Len(), primitive.Len()
	switch {
	case ll == pl:
		return &plan{op: op, lhs: list, rhs: primitive, swapped: originallySwapped, kind: caseListToPrimitiveNoBroadcast, rows: ll}, nil
	case pl == 1:
		return &plan{op: op, lhs: list, rhs: primitive, swapped: originallySwapped, kind: caseListToPrimitiveBroadcastRight, rows: ll}, nil
	case ll == 1:
		materialized := materializeBroadcastList(list, pl)
		return &plan{op: op, lhs: materialized, rhs: primitive, swapped: originallySwapped, kind: caseListToPrimitiveNoBroadcast, rows: pl}, nil
	default:
		return nil, shapeMismatchf("list column of length %d cannot be broadcast against primitive column of length %d", ll, pl)
	}
}

// planPrimitivePrimitive handles two depth-0 columns: a degenerate instance
// of the List-to-Primitive, no-broadcast case with zero list levels, so it
// shares the executor's leaf-only path rather than duplicating it.
func planPrimitivePrimitive(op Op, lhs, rhs *Column) (*plan, error) {
	ll, rl := lhs.Len(), rhs.Len()
	switch {
	case ll == rl:
		return &plan{op: op, lhs: lhs, rhs: rhs, kind: caseListToPrimitiveNoBroadcast, rows: ll}, nil
	case rl == 1:
		return &plan{op: op, lhs: lhs, rhs: rhs, kind: caseListToPrimitiveBroadcastRight, rows: ll}, nil
	case ll == 1:
		return &plan{op: op, lhs: rhs, rhs: lhs, swapped: true, kind: caseListToPrimitiveBroadcastRight, rows: rl}, nil
	default:
		return nil, shapeMismatchf("primitive columns of length %d and %d cannot be broadcast together", ll, rl)
	}
}
