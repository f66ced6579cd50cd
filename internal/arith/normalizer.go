package arith

// normalize rewrites p's List-to-List broadcast-right case into an ordinary
// equal-length pairing by materializing the unit-row side, so the executor
// only ever has to implement three physical shapes instead of four. The
// List-to-Primitive broadcast-right case is left alone — its right operand
// is a single scalar, cheap enough to re-read per output row without ever
// allocating a materialized copy.
func normalize(p *plan) *plan {
	if p.kind != caseListToListBroadcastRight {
		return p
	}
	materialized := *p
	materialized.rhs = materializeBroadcastList(p.rhs, p.rows)
	materialized.kind = caseListToListNoBroadcast
	return &materialized
}
