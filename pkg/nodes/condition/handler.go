// Package condition provides the handler for condition and logic-* nodes.
//
// The boolean grammar is a small comparison-operator language: the config
// carries "left", "operator" and "right" fields, operands are rendered
// through the substitution engine against the execution context, and the
// operator is one of equals, not-equals, contains, greater-than, less-than
// or exists. A missing operator defaults to equals. The exists operator
// resolves a lone placeholder operand by context lookup instead of comparing
// rendered text.
package condition

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/template"
)

const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not-equals"
	OperatorContains    = "contains"
	OperatorGreaterThan = "greater-than"
	OperatorLessThan    = "less-than"
	OperatorExists      = "exists"
)

// Handler evaluates a configured comparison against context values.
type Handler struct{}

// NewHandler creates a condition node handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Execute renders both operands and applies the operator.
func (h *Handler) Execute(_ context.Context, node *models.FlowNode, executionCtx *models.ExecutionContext) (map[string]any, error) {
	config := node.Config()

	operator, _ := config["operator"].(string)
	if operator == "" {
		operator = OperatorEquals
	}

	leftRaw, _ := config["left"].(string)
	rightRaw, _ := config["right"].(string)

	var (
		met bool
		err error
	)

	if operator == OperatorExists {
		met = existsInContext(leftRaw, executionCtx)
	} else {
		left := template.SubstituteWithContext(leftRaw, executionCtx)
		right := template.SubstituteWithContext(rightRaw, executionCtx)

		met, err = evaluate(operator, left, right)
	}

	if err != nil {
		return nil, err
	}

	return map[string]any{
		"condition_met": met,
		"result":        met,
		"operator":      operator,
	}, nil
}

func evaluate(operator, left, right string) (bool, error) {
	switch operator {
	case OperatorEquals:
		return left == right, nil
	case OperatorNotEquals:
		return left != right, nil
	case OperatorContains:
		return strings.Contains(left, right), nil
	case OperatorGreaterThan, OperatorLessThan:
		return compareNumbers(operator, left, right)
	default:
		return false, fmt.Errorf("unsupported condition operator %q", operator)
	}
}

// existsInContext resolves the exists operator. A lone placeholder operand is
// looked up in the context directly, so empty or brace-containing values
// still count as present; literal operands exist when non-empty.
func existsInContext(leftRaw string, executionCtx *models.ExecutionContext) bool {
	if key, ok := template.PlaceholderKey(leftRaw); ok {
		_, present := executionCtx.Get(key)

		return present
	}

	return template.SubstituteWithContext(leftRaw, executionCtx) != ""
}

func compareNumbers(operator, left, right string) (bool, error) {
	leftNum, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil {
		return false, fmt.Errorf("left operand %q is not numeric: %w", left, err)
	}

	rightNum, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil {
		return false, fmt.Errorf("right operand %q is not numeric: %w", right, err)
	}

	if operator == OperatorGreaterThan {
		return leftNum > rightNum, nil
	}

	return leftNum < rightNum, nil
}
