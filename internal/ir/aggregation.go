package ir

import (
	"fmt"
	"strings"
)

// AggregationKind is the condenser applied in an aggregating return clause.
type AggregationKind int

const (
	AggNone AggregationKind = iota
	AggMin
	AggMax
	AggAvg
	AggSum
	AggCount
)

// String returns the upper-case kind name ("MIN", ...), "NONE" for AggNone.
func (k AggregationKind) String() string {
	switch k {
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggAvg:
		return "AVG"
	case AggSum:
		return "SUM"
	case AggCount:
		return "COUNT"
	default:
		return "NONE"
	}
}

// FuncName returns the WCPS function name for the kind ("min", "max", ...).
func (k AggregationKind) FuncName() string {
	return strings.ToLower(k.String())
}

// ParseAggregation maps a case-insensitive name to an AggregationKind.
func ParseAggregation(name string) (AggregationKind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "MIN":
		return AggMin, nil
	case "MAX":
		return AggMax, nil
	case "AVG":
		return AggAvg, nil
	case "SUM":
		return AggSum, nil
	case "COUNT":
		return AggCount, nil
	default:
		return AggNone, &QueryError{
			Code:    ErrCodeInvalidArgument,
			Message: fmt.Sprintf("unknown aggregation %q", name),
		}
	}
}
