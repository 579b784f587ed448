package sequencer

// Outcome is the classification of one hand-off attempt based on the
// observed settled deltas of the seller and buyer.
type Outcome string

const (
	// OutcomeFullMatch means both sides moved by at least the remaining size.
	OutcomeFullMatch Outcome = "full_match"
	// OutcomePartialFill means the seller moved by less than the remaining size.
	OutcomePartialFill Outcome = "partial_fill"
	// OutcomeAnomaly covers everything else and triggers a recheck.
	OutcomeAnomaly Outcome = "anomaly"
)

// Classify maps observed deltas to a hand-off outcome.
// Full match is exactly sold >= remaining && bought >= remaining; partial
// fill is exactly 0 < sold < remaining; everything else is an anomaly.
func Classify(sold, bought, remaining float64) Outcome {
	if sold >= remaining && bought >= remaining {
		return OutcomeFullMatch
	}
	if sold > 0 && sold < remaining {
		return OutcomePartialFill
	}
	return OutcomeAnomaly
}

// AnomalyClass is the resolution applied to an anomaly that persists through
// the recheck.
type AnomalyClass string

const (
	// AnomalyDivert means the buyer filled from the open market while the
	// seller still holds inventory. The residual is liquidated and the walk
	// advances.
	AnomalyDivert AnomalyClass = "divert"
	// AnomalyMisfill means the seller's inventory left but the buyer got
	// nothing: the fill went to an unrelated counterparty. The whole
	// operation restarts from acquisition.
	AnomalyMisfill AnomalyClass = "misfill"
	// AnomalyRetry is the catch-all: cancel both orders and retry the pair.
	AnomalyRetry AnomalyClass = "retry"
)

// ClassifyAnomaly resolves a persistent anomaly. Divert and misfill are
// mutually exclusive: divert requires sold < remaining, misfill requires
// sold >= remaining.
func ClassifyAnomaly(sold, bought, remaining float64) AnomalyClass {
	if bought >= remaining && sold < remaining {
		return AnomalyDivert
	}
	if sold >= remaining && bought == 0 {
		return AnomalyMisfill
	}
	return AnomalyRetry
}
