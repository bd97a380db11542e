package datacube

import (
	"fmt"

	"github.com/roach88/datacube/internal/ir"
)

// Apply replaces the builder state with plan, replaying it through the
// same checks as the individual calls. On error the builder is unchanged.
func (d *Datacube) Apply(plan ir.Plan) error {
	scratch := &Datacube{sender: d.sender, compiler: d.compiler, logger: d.logger, now: d.now}

	for _, v := range plan.Variables {
		var err error
		if v.Synthetic() {
			err = scratch.applySynthetic(v)
		} else {
			err = scratch.DeclareMulti(v.Name, v.Coverages...)
			if err == nil && v.Subset != nil {
				err = scratch.Subset(*v.Subset, v.Name)
			}
		}
		if err != nil {
			return fmt.Errorf("apply variable %s: %w", v.Name, err)
		}
	}

	if plan.Filter != "" {
		if err := scratch.Where(plan.Filter); err != nil {
			return fmt.Errorf("apply filter: %w", err)
		}
	}

	for _, s := range plan.Returns.All() {
		var err error
		switch st := s.(type) {
		case ir.Aggregate:
			err = scratch.Aggregate(st.Func, st.Condition)
		case ir.EncodeExpr:
			err = scratch.Encode(st.Expr)
		case ir.TransformExpr:
			err = scratch.Transform(st.Expr)
		case ir.SwitchExpr:
			scratch.plan.Returns.Set(st)
		}
		if err != nil {
			return fmt.Errorf("apply %s: %w", s.Kind(), err)
		}
	}

	if err := scratch.SetFormat(plan.Format); err != nil {
		return fmt.Errorf("apply format: %w", err)
	}

	d.plan = scratch.plan
	return nil
}

func (d *Datacube) applySynthetic(v ir.Variable) error {
	name, err := ir.CanonicalName(v.Name)
	if err != nil {
		return err
	}
	if v.Subset == nil || *v.Subset == "" {
		return &ir.QueryError{
			Code:    ir.ErrCodeInvalidArgument,
			Message: "a variable without coverages must carry a subset",
			Name:    name,
		}
	}
	subset := *v.Subset
	return d.declare(ir.Variable{Name: name, Subset: &subset})
}
