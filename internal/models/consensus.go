package models

// MarketConsensus is the weighted vote outcome for one family
type MarketConsensus struct {
	Market      Family    `json:"market"`
	Prediction  Selection `json:"prediction"`
	Confidence  int       `json:"confidence"`
	WinningMass float64   `json:"winning_mass"`
	TotalMass   float64   `json:"total_mass"`
	Votes       int       `json:"votes"`
	Unanimous   bool      `json:"unanimous"`
	Defaulted   bool      `json:"defaulted"`
}

// BestBet is the single cross-market recommendation of the consensus
type BestBet struct {
	Market     Family    `json:"market"`
	Selection  Selection `json:"selection"`
	Confidence int       `json:"confidence"`
	Score      float64   `json:"score"`
}

// ConsensusResult is the deterministic aggregation of agent opinions
type ConsensusResult struct {
	Markets              []MarketConsensus `json:"markets"`
	BestBet              BestBet           `json:"best_bet"`
	UnanimousDecisions   []Family          `json:"unanimous_decisions"`
	ConflictingDecisions []Family          `json:"conflicting_decisions"`
}

// Market returns the consensus entry for a family
func (c *ConsensusResult) Market(family Family) (MarketConsensus, bool) {
	if c == nil {
		return MarketConsensus{}, false
	}
	for _, m := range c.Markets {
		if m.Market == family {
			return m, true
		}
	}
	return MarketConsensus{}, false
}
