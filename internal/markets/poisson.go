package markets

import "math"

// maxGoals bounds the per-team score grid used for joint outcomes
const maxGoals = 8

// poissonPMF returns P(X = k) for X ~ Poisson(lambda)
func poissonPMF(lambda float64, k int) float64 {
	if k < 0 {
		return 0
	}
	p := math.Exp(-lambda)
	for i := 1; i <= k; i++ {
		p *= lambda / float64(i)
	}
	return p
}

// poissonCDF returns P(X <= k)
func poissonCDF(lambda float64, k int) float64 {
	if k < 0 {
		return 0
	}
	term := math.Exp(-lambda)
	sum := term
	for i := 1; i <= k; i++ {
		term *= lambda / float64(i)
		sum += term
	}
	return sum
}

// OverProbability returns P(total > line) for a half-goal line
func OverProbability(lambdaTotal, line float64) float64 {
	return 1 - poissonCDF(lambdaTotal, int(math.Floor(line)))
}

// scoreGrid holds P(home = h, away = a) over 0..maxGoals, normalized by the
// covered mass so the grid sums to 1.
type scoreGrid [maxGoals + 1][maxGoals + 1]float64

func newScoreGrid(lambdaHome, lambdaAway float64) scoreGrid {
	var g scoreGrid
	var home, away [maxGoals + 1]float64
	for k := 0; k <= maxGoals; k++ {
		home[k] = poissonPMF(lambdaHome, k)
		away[k] = poissonPMF(lambdaAway, k)
	}
	mass := 0.0
	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			g[h][a] = home[h] * away[a]
			mass += g[h][a]
		}
	}
	if mass > 0 {
		for h := range g {
			for a := range g[h] {
				g[h][a] /= mass
			}
		}
	}
	return g
}

// sum adds every cell for which keep reports true
func (g *scoreGrid) sum(keep func(h, a int) bool) float64 {
	total := 0.0
	for h := 0; h <= maxGoals; h++ {
		for a := 0; a <= maxGoals; a++ {
			if keep(h, a) {
				total += g[h][a]
			}
		}
	}
	return total
}
