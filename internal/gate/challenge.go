package gate

import (
	"fmt"
	"math/rand/v2"
)

type Operator string

const (
	OpAdd      Operator = "add"
	OpSubtract Operator = "subtract"
	OpMultiply Operator = "multiply"
)

// Challenge is the arithmetic question shown to whoever asked for settings.
// The operand ranges keep every question solvable in an adult's head and out
// of a preschooler's: sums in the tens, subtractions always positive, small
// multiplication table products.
type Challenge struct {
	Left     int      `json:"left"`
	Right    int      `json:"right"`
	Operator Operator `json:"operator"`
	Answer   int      `json:"-"`
}

// NewChallenge draws the operator uniformly and operands from the per-operator
// ranges. A fresh challenge is generated on every gate activation and never
// persisted.
func NewChallenge() Challenge {
	switch rand.IntN(3) {
	case 0:
		left := 10 + rand.IntN(20)
		right := 10 + rand.IntN(20)
		return Challenge{Left: left, Right: right, Operator: OpAdd, Answer: left + right}
	case 1:
		left := 20 + rand.IntN(30)
		right := 5 + rand.IntN(15)
		return Challenge{Left: left, Right: right, Operator: OpSubtract, Answer: left - right}
	default:
		left := 3 + rand.IntN(8)
		right := 3 + rand.IntN(8)
		return Challenge{Left: left, Right: right, Operator: OpMultiply, Answer: left * right}
	}
}

// Prompt renders the question for display, e.g. "17 + 9 = ?".
func (c Challenge) Prompt() string {
	symbol := "+"
	switch c.Operator {
	case OpSubtract:
		symbol = "−"
	case OpMultiply:
		symbol = "×"
	}
	return fmt.Sprintf("%d %s %d = ?", c.Left, symbol, c.Right)
}
