package ir

// StrategyKind identifies a return strategy variant.
// Higher values take precedence when several strategies are stored.
type StrategyKind int

const (
	StrategyListing StrategyKind = iota
	StrategySwitch
	StrategyTransform
	StrategyEncode
	StrategyAggregate

	strategyCount
)

// String returns a lower-case name for the kind.
func (k StrategyKind) String() string {
	switch k {
	case StrategySwitch:
		return "switch"
	case StrategyTransform:
		return "transform"
	case StrategyEncode:
		return "encode"
	case StrategyAggregate:
		return "aggregate"
	default:
		return "listing"
	}
}

// ReturnStrategy decides what fills the terminal return clause of a query.
//
// This is a sealed interface - only types in this package implement it,
// which keeps type switches in the compiler exhaustive.
//
// Variants, highest precedence first:
//   - Aggregate: kind(condition or listing), never format-wrapped
//   - EncodeExpr: caller-supplied expression, substituted
//   - TransformExpr: caller-supplied expression, substituted
//   - SwitchExpr: pre-rendered switch text, used verbatim
//   - Listing: every declared variable with its subset
type ReturnStrategy interface {
	Kind() StrategyKind
	returnStrategy()
}

// Aggregate condenses the condition (or the default listing) with an
// aggregation function. An empty Condition means "no condition".
type Aggregate struct {
	Func      AggregationKind
	Condition string
}

func (Aggregate) Kind() StrategyKind { return StrategyAggregate }
func (Aggregate) returnStrategy()    {}

// EncodeExpr is an explicit expression for the encode() body.
type EncodeExpr struct {
	Expr string
}

func (EncodeExpr) Kind() StrategyKind { return StrategyEncode }
func (EncodeExpr) returnStrategy()    {}

// TransformExpr is a transformation applied to the declared variables.
type TransformExpr struct {
	Expr string
}

func (TransformExpr) Kind() StrategyKind { return StrategyTransform }
func (TransformExpr) returnStrategy()    {}

// SwitchExpr holds a fully rendered switch/case expression.
type SwitchExpr struct {
	Text string
}

func (SwitchExpr) Kind() StrategyKind { return StrategySwitch }
func (SwitchExpr) returnStrategy()    {}

// Listing returns every declared variable.
type Listing struct{}

func (Listing) Kind() StrategyKind { return StrategyListing }
func (Listing) returnStrategy()    {}

// Returns stores at most one strategy per kind.
//
// Setting a strategy replaces only the slot of its own kind, so setting MIN
// then MAX keeps MAX, while an encode expression and a transform expression
// coexist and the encode expression shadows the transform. Active applies
// the precedence rule; nothing else in the module orders strategies.
type Returns struct {
	slots [strategyCount]ReturnStrategy
}

// Set stores s in the slot for its kind. Listing and nil are ignored.
func (r *Returns) Set(s ReturnStrategy) {
	if s == nil || s.Kind() == StrategyListing {
		return
	}
	r.slots[s.Kind()] = s
}

// Get returns the stored strategy of the given kind, if any.
func (r *Returns) Get(kind StrategyKind) (ReturnStrategy, bool) {
	if kind < 0 || kind >= strategyCount {
		return nil, false
	}
	s := r.slots[kind]
	return s, s != nil
}

// Has reports whether a strategy of the given kind is stored.
func (r *Returns) Has(kind StrategyKind) bool {
	_, ok := r.Get(kind)
	return ok
}

// Active returns the highest-precedence stored strategy, Listing if none.
func (r *Returns) Active() ReturnStrategy {
	for k := strategyCount - 1; k > StrategyListing; k-- {
		if s := r.slots[k]; s != nil {
			return s
		}
	}
	return Listing{}
}

// All returns stored strategies, highest precedence first.
func (r *Returns) All() []ReturnStrategy {
	var out []ReturnStrategy
	for k := strategyCount - 1; k > StrategyListing; k-- {
		if s := r.slots[k]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Clear removes every stored strategy.
func (r *Returns) Clear() {
	r.slots = [strategyCount]ReturnStrategy{}
}
