package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturns_EmptyIsListing(t *testing.T) {
	var r Returns
	assert.Equal(t, Listing{}, r.Active())
	assert.Empty(t, r.All())
}

func TestReturns_Precedence(t *testing.T) {
	var r Returns
	r.Set(SwitchExpr{Text: "switch case $c > 1 return 1 default return 0 end"})
	assert.Equal(t, StrategySwitch, r.Active().Kind())

	r.Set(TransformExpr{Expr: "$c + 200"})
	assert.Equal(t, StrategyTransform, r.Active().Kind())

	r.Set(EncodeExpr{Expr: "300"})
	assert.Equal(t, StrategyEncode, r.Active().Kind())

	r.Set(Aggregate{Func: AggMin})
	assert.Equal(t, StrategyAggregate, r.Active().Kind())

	// Lower strategies stay stored while shadowed.
	assert.True(t, r.Has(StrategyTransform))
	assert.True(t, r.Has(StrategySwitch))
	assert.Len(t, r.All(), 4)
}

func TestReturns_LastWriteWinsPerKind(t *testing.T) {
	var r Returns
	r.Set(Aggregate{Func: AggMin})
	r.Set(Aggregate{Func: AggMax, Condition: "$c > 12"})
	assert.Equal(t, Aggregate{Func: AggMax, Condition: "$c > 12"}, r.Active())

	r.Set(Aggregate{Func: AggAvg, Condition: "$c > 1"})
	r.Set(Aggregate{Func: AggSum})
	assert.Equal(t, Aggregate{Func: AggSum}, r.Active())
}

func TestReturns_SetIgnoresListingAndNil(t *testing.T) {
	var r Returns
	r.Set(nil)
	r.Set(Listing{})
	assert.Empty(t, r.All())
}

func TestReturns_Clear(t *testing.T) {
	var r Returns
	r.Set(EncodeExpr{Expr: "1"})
	r.Clear()
	assert.False(t, r.Has(StrategyEncode))
	assert.Equal(t, Listing{}, r.Active())
}
