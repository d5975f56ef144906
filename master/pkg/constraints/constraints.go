// Package constraints translates structured placement constraints into the flattened
// "<key><op><value>" expressions understood by container orchestrators.
package constraints

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/pkg/model"
)

const (
	// EqualOp is emitted for IN constraints.
	EqualOp = "=="
	// NotEqualOp is emitted for NOT_IN constraints.
	NotEqualOp = "!="
)

// ErrUnknownOperator is returned for an operator outside the closed set.
var ErrUnknownOperator = errors.New("unknown constraint operator")

func opString(op model.ConstraintOperator) (string, error) {
	switch op {
	case model.ConstraintIn:
		return EqualOp, nil
	case model.ConstraintNotIn:
		return NotEqualOp, nil
	default:
		return "", errors.Wrapf(ErrUnknownOperator, "%q", op)
	}
}

// Translate emits one expression per distinct value of the constraint. Expressions follow the
// order of first appearance in Values, but callers should treat the result as a set.
func Translate(c model.Constraint) ([]string, error) {
	op, err := opString(c.Operator)
	if err != nil {
		return nil, err
	}
	values := model.DistinctValues(c.Values)
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, c.Key+op+v)
	}
	return out, nil
}

// TranslateGroups translates every constraint in list order, keeping the expressions of each
// constraint together. Orchestrators that can express alternatives treat one group as a
// disjunction for IN constraints; groups always combine as a conjunction.
func TranslateGroups(cs []model.Constraint) ([][]string, error) {
	var out [][]string
	for _, c := range cs {
		exprs, err := Translate(c)
		if err != nil {
			return nil, errors.Wrapf(err, "translating constraint on %q", c.Key)
		}
		out = append(out, exprs)
	}
	return out, nil
}

// Flatten concatenates groups of expressions. The result is never nil.
func Flatten(groups [][]string) []string {
	out := []string{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Expression is a single parsed placement expression.
type Expression struct {
	Key      string
	Operator model.ConstraintOperator
	Value    string
}

// Parse reverses Translate for a single expression, for orchestrators that want structured
// placement rules.
func Parse(expr string) (Expression, error) {
	for _, candidate := range []struct {
		op  string
		mop model.ConstraintOperator
	}{{EqualOp, model.ConstraintIn}, {NotEqualOp, model.ConstraintNotIn}} {
		if i := strings.Index(expr, candidate.op); i > 0 {
			return Expression{
				Key:      strings.TrimSpace(expr[:i]),
				Operator: candidate.mop,
				Value:    strings.TrimSpace(expr[i+len(candidate.op):]),
			}, nil
		}
	}
	return Expression{}, errors.Errorf("malformed placement expression %q", expr)
}
