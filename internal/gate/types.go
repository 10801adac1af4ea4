package gate

// #region op

// Op is a comparison operator appearing in gates and prerequisite leaves.
type Op string

const (
	OpGE Op = ">="
	OpLE Op = "<="
	OpGT Op = ">"
	OpLT Op = "<"
	OpEQ Op = "=="
)

// IsHighDirection reports whether the operator demands the value from above
// (">=", ">"). "==" is treated as high-direction for reachability purposes.
func (o Op) IsHighDirection() bool {
	return o == OpGE || o == OpGT || o == OpEQ
}

// Flip mirrors the operator for reversed comparisons ("const op var").
func (o Op) Flip() Op {
	switch o {
	case OpGE:
		return OpLE
	case OpLE:
		return OpGE
	case OpGT:
		return OpLT
	case OpLT:
		return OpGT
	default:
		return o
	}
}

// #endregion op

// #region constraint

// Constraint is one parsed gate comparison on a single axis, in native units.
type Constraint struct {
	Axis      string
	Op        Op
	Threshold float64
}

// #endregion constraint

// #region parse-status

// ParseStatus summarizes how much of a prototype's gate list parsed.
type ParseStatus string

const (
	ParseComplete ParseStatus = "complete" // every gate parsed (vacuously true for zero gates)
	ParsePartial  ParseStatus = "partial"  // some gates parsed, some did not
	ParseFailed   ParseStatus = "failed"   // no gate parsed
)

// ParseInfo reports gate parsing coverage for one prototype. It is attached
// to every overlap report regardless of whether implication was evaluated.
type ParseInfo struct {
	Status          ParseStatus
	TotalGateCount  int
	ParsedGateCount int
	UnparsedGates   []string
}

// #endregion parse-status
