package datacube

import "log/slog"

// BuildQuery serializes the current state into WCPS text. It does not
// modify the builder.
func (d *Datacube) BuildQuery() (string, error) {
	query, err := d.compiler.CompilePlan(d.plan)
	if err != nil {
		return "", err
	}
	d.logger.Debug("query built",
		slog.Int("variables", len(d.plan.Variables)),
		slog.String("strategy", d.plan.Returns.Active().Kind().String()),
		slog.String("format", d.plan.Format.String()),
	)
	return query, nil
}
