package account

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidLimitRule is returned by ParseLimit for rules it cannot read.
var ErrInvalidLimitRule = errors.New("invalid limit rule")

// Operands a limit rule may compare.
const (
	OperandAmount = "amount"
	OperandBefore = "before"
	OperandAfter  = "after"
)

// comparison operators, two-character ones first so "<=" is not read as "<".
var comparators = []struct {
	op string
	fn func(l, r float64) bool
}{
	{"<=", func(l, r float64) bool { return l <= r }},
	{">=", func(l, r float64) bool { return l >= r }},
	{"==", func(l, r float64) bool { return l == r }},
	{"!=", func(l, r float64) bool { return l != r }},
	{"<", func(l, r float64) bool { return l < r }},
	{">", func(l, r float64) bool { return l > r }},
}

type clause struct {
	operand string
	cmp     func(l, r float64) bool
	value   float64
}

func (c clause) eval(amount, before, after float64) bool {
	switch c.operand {
	case OperandAmount:
		return c.cmp(amount, c.value)
	case OperandBefore:
		return c.cmp(before, c.value)
	default:
		return c.cmp(after, c.value)
	}
}

// ParseLimit compiles a textual limit rule into a Limit.
//
// A rule is one or more comparisons joined with "&&". Each comparison has an
// operand (amount, before or after) on the left, an operator
// (< <= > >= == !=) and a number on the right:
//
//	amount < 10
//	after >= 100 && amount <= 500
func ParseLimit(rule string) (Limit, error) {
	if strings.TrimSpace(rule) == "" {
		return nil, fmt.Errorf("%w: empty rule", ErrInvalidLimitRule)
	}
	parts := strings.Split(rule, "&&")
	clauses := make([]clause, 0, len(parts))
	for _, part := range parts {
		c, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return func(amount, before, after float64) bool {
		for _, c := range clauses {
			if !c.eval(amount, before, after) {
				return false
			}
		}
		return true
	}, nil
}

func parseClause(s string) (clause, error) {
	for _, cmp := range comparators {
		idx := strings.Index(s, cmp.op)
		if idx < 0 {
			continue
		}
		operand := strings.TrimSpace(s[:idx])
		switch operand {
		case OperandAmount, OperandBefore, OperandAfter:
		default:
			return clause{}, fmt.Errorf("%w: unknown operand %q", ErrInvalidLimitRule, operand)
		}
		raw := strings.TrimSpace(s[idx+len(cmp.op):])
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || !IsFinite(value) {
			return clause{}, fmt.Errorf("%w: %q is not a number", ErrInvalidLimitRule, raw)
		}
		return clause{operand: operand, cmp: cmp.fn, value: value}, nil
	}
	return clause{}, fmt.Errorf("%w: no comparison in %q", ErrInvalidLimitRule, s)
}
