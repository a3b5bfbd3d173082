package alerts

import (
	"strconv"
	"strings"

	"github.com/smokesignal/smokesignal/pkg/types"
)

// evalCondition evaluates a rule condition against one target result.
//
// Supported expressions (field operator value):
//
//	status == CRITICAL
//	status != NORMAL
//	latency == Down
//	severity >= 1
//
// Returns (fires bool, observed value string).
// Returns (false, "") if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, r types.TargetResult) (bool, string) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, ""
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "status":
		return compareString(string(r.Status), op, strings.ToUpper(rhs)), string(r.Status)

	case "latency":
		return compareString(r.Latency, op, rhs), r.Latency

	case "severity":
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, ""
		}
		v := r.Status.Severity()
		return compareFloat(float64(v), op, threshold), strconv.Itoa(v)

	default:
		return false, ""
	}
}

// compareString supports equality operators only.
func compareString(v, op, want string) bool {
	switch op {
	case "==":
		return v == want
	case "!=":
		return v != want
	default:
		return false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}
