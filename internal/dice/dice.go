// Package dice implements the Ordem Paranormal attribute test: roll one d20
// per attribute point and keep the best.
package dice

import "math/rand/v2"

const (
	Sides = 20
	// MaxDice bounds a single roll request.
	MaxDice = 100
)

type Result struct {
	Rolls   []int `json:"rolls"`
	Highest int   `json:"highest"`
	Total   int   `json:"total"`
}

// Roll draws count dice with the given number of sides.
func Roll(count, sides int) Result {
	res := Result{Rolls: make([]int, count)}
	for i := range count {
		r := rand.IntN(sides) + 1
		res.Rolls[i] = r
		res.Total += r
		if r > res.Highest {
			res.Highest = r
		}
	}
	return res
}

// RollAttribute rolls score d20s. A score of zero or less still yields a
// single die fixed at 1.
func RollAttribute(score int) Result {
	if score <= 0 {
		return Result{Rolls: []int{1}, Highest: 1, Total: 1}
	}
	return Roll(score, Sides)
}
