package ir

import "strings"

// Variable is a declared coverage variable.
//
// Name always carries the sentinel ("$c"). Coverages lists the coverages the
// variable ranges over; it is empty for synthetic variables created by
// binding a subset without naming a variable, and such variables get no
// "for" clause. Subset is nil when no restriction has been bound.
type Variable struct {
	Name      string   `json:"name"`
	Coverages []string `json:"coverages,omitempty"`
	Subset    *string  `json:"subset,omitempty"`
}

// HasSubset reports whether a subset has been bound.
func (v Variable) HasSubset() bool {
	return v.Subset != nil
}

// Synthetic reports whether the variable ranges over no coverage.
func (v Variable) Synthetic() bool {
	return len(v.Coverages) == 0
}

// Ref renders the variable as it appears in a return body:
// "$c[subset]" when a subset is bound, "$c" otherwise.
func (v Variable) Ref() string {
	if v.Subset == nil {
		return v.Name
	}
	return v.Name + "[" + *v.Subset + "]"
}

// Clause renders the "for" clause ("$c in (A,B)").
func (v Variable) Clause() string {
	return v.Name + " in (" + strings.Join(v.Coverages, ",") + ")"
}

// Plan is a snapshot of builder state.
// A zero Plan is valid and serializes to the empty query skeleton.
type Plan struct {
	// Variables in declaration order.
	Variables []Variable `json:"variables"`

	// Filter is the where condition, "" when unset.
	Filter string `json:"filter,omitempty"`

	// Returns holds the stored return strategies.
	Returns Returns `json:"-"`

	// Format is the requested output format.
	Format Format `json:"-"`
}

// Index returns the position of the named variable, or -1.
func (p *Plan) Index(name string) int {
	for i, v := range p.Variables {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Lookup returns the named variable.
func (p *Plan) Lookup(name string) (Variable, bool) {
	if i := p.Index(name); i >= 0 {
		return p.Variables[i], true
	}
	return Variable{}, false
}

// Names returns the declared variable names in declaration order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Variables))
	for i, v := range p.Variables {
		names[i] = v.Name
	}
	return names
}

// Clone returns a deep copy. Strategies are values, so copying the
// Returns array is enough.
func (p Plan) Clone() Plan {
	out := p
	out.Variables = make([]Variable, len(p.Variables))
	for i, v := range p.Variables {
		cv := Variable{Name: v.Name, Coverages: append([]string(nil), v.Coverages...)}
		if v.Subset != nil {
			s := *v.Subset
			cv.Subset = &s
		}
		out.Variables[i] = cv
	}
	return out
}

// canonicalMap converts the plan to plain values for canonical JSON.
// Absent optional parts are omitted rather than encoded as null.
func (p Plan) canonicalMap() map[string]any {
	vars := make([]any, len(p.Variables))
	for i, v := range p.Variables {
		m := map[string]any{"name": v.Name}
		covs := make([]any, len(v.Coverages))
		for j, c := range v.Coverages {
			covs[j] = c
		}
		m["coverages"] = covs
		if v.Subset != nil {
			m["subset"] = *v.Subset
		}
		vars[i] = m
	}

	returns := map[string]any{}
	for _, s := range p.Returns.All() {
		switch st := s.(type) {
		case Aggregate:
			returns[st.Kind().String()] = map[string]any{
				"func":      st.Func.FuncName(),
				"condition": st.Condition,
			}
		case EncodeExpr:
			returns[st.Kind().String()] = st.Expr
		case TransformExpr:
			returns[st.Kind().String()] = st.Expr
		case SwitchExpr:
			returns[st.Kind().String()] = st.Text
		}
	}

	m := map[string]any{
		"variables": vars,
		"returns":   returns,
		"format":    p.Format.String(),
	}
	if p.Filter != "" {
		m["filter"] = p.Filter
	}
	return m
}
