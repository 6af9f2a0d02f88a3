package searcher

import "math"

// ucb1 scores children of a parent visited N times.
type ucb1 struct {
	c    float64
	logN float64
}

func newUCB1(c float64, N int) ucb1 {
	if N <= 0 {
		panic("cannot compute UCB1: parent has no visits")
	}
	return ucb1{c: c, logN: math.Log(float64(N))}
}

// evaluate returns wins/n + c*sqrt(ln(N)/n), where wins are counted for the
// parent's player to move. Unvisited children score +Inf.
func (u ucb1) evaluate(wins int, n int) float64 {
	if n == 0 {
		return math.Inf(1)
	}
	return float64(wins)/float64(n) + u.c*math.Sqrt(u.logN/float64(n))
}
