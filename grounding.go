package lectern

// DecideGrounding selects the terminal mode for a query from its retrieved
// score distribution: no results means fallback with reason no_chunks; a
// best score under the threshold means fallback with reason low_scores;
// otherwise the answer is grounded. Only the maximum score gates the
// decision; lower-scored results never promote or demote a query.
//
// The function is pure and decided once per query; the same scores and
// threshold always produce the same decision.
func DecideGrounding(results []RetrievedResult, threshold float32) GroundingDecision {
	if len(results) == 0 {
		return GroundingDecision{Mode: ModeFallback, Reason: ReasonNoChunks}
	}
	var maxScore float32
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	if maxScore < threshold {
		return GroundingDecision{Mode: ModeFallback, Reason: ReasonLowScores, MaxScore: maxScore}
	}
	return GroundingDecision{Mode: ModeGrounded, Reason: ReasonNone, MaxScore: maxScore}
}
