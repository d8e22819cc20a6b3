package optimizer

// UnassignedJobConstraint charges Problem.UnassignedJobCost for every
// service or shipment left unassigned at the end of an iteration. Its
// marginal insertion score is always zero: original_source's
// unassigned_job_constraint.rs treats this purely as an end-of-iteration
// penalty, not something recreate strategies chase position-by-position —
// chasing it marginally would double-count against the constraints that
// already reward placing a job (transport cost, fixed cost) and give no
// useful signal for choosing *where* to place it.
type UnassignedJobConstraint struct{}

func (UnassignedJobConstraint) Level() ScoreLevel { return Hard }

func (UnassignedJobConstraint) ComputeGlobalScore(solution *WorkingSolution) Score {
	count := len(solution.UnassignedServices()) + len(solution.UnassignedShipments())
	return HardOf(float64(count) * solution.Problem().UnassignedJobCost())
}

func (UnassignedJobConstraint) ComputeInsertionScore(ctx *InsertionContext) Score {
	return Zero()
}
