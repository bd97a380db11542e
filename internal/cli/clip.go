package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/datacube/internal/expr"
	"github.com/roach88/datacube/internal/geometry"
)

// ClipOptions holds flags for the clip command.
type ClipOptions struct {
	*RootOptions
	Var      string
	Points   []string // "lat,lon"
	Rotate   float64
	Center   string // "lat,lon"
	Scale    float64
	Contains []string // "lat,lon"
	GeoJSON  bool
}

// ClipResult describes the rendered clip polygon.
type ClipResult struct {
	Expression string            `json:"expression"`
	Area       float64           `json:"area"`
	Points     []geometry.Point  `json:"points"`
	Contains   map[string]bool   `json:"contains,omitempty"`
	GeoJSON    *geometry.Feature `json:"geojson,omitempty"`
}

// NewClipCommand creates the clip command.
func NewClipCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClipOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clip",
		Short: "Render a polygon clip expression",
		Long: `Render clip($var, POLYGON((...))) from three or more lat,lon points.
Coordinates are rounded to four decimals. The polygon can be rotated
(degrees, counter-clockwise around --center) and scaled before rendering.

Examples:
  datacube clip --var c --point 10,20 --point 10,30 --point 20,25
  datacube clip --var c --point 0,0 --point 0,2 --point 2,2 --point 2,0 --contains 1,1 --geojson`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClip(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Var, "var", "c", "coverage variable to clip")
	cmd.Flags().StringArrayVar(&opts.Points, "point", nil, "vertex as lat,lon (repeatable)")
	cmd.Flags().Float64Var(&opts.Rotate, "rotate", 0, "rotation in degrees")
	cmd.Flags().StringVar(&opts.Center, "center", "0,0", "rotation center as lat,lon")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 1, "scale factor")
	cmd.Flags().StringArrayVar(&opts.Contains, "contains", nil, "report whether lat,lon lies inside (repeatable)")
	cmd.Flags().BoolVar(&opts.GeoJSON, "geojson", false, "also print the polygon as a GeoJSON feature")

	return cmd
}

func runClip(opts *ClipOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	invalid := func(err error) error {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err.Error(), nil)
	}

	poly := geometry.NewPolygon()
	for _, s := range opts.Points {
		lat, lon, err := parseLatLon(s)
		if err != nil {
			return invalid(err)
		}
		poly.AddPoint(lat, lon)
	}

	if opts.Rotate != 0 {
		cLat, cLon, err := parseLatLon(opts.Center)
		if err != nil {
			return invalid(err)
		}
		poly.Rotate(opts.Rotate, cLat, cLon)
	}
	if opts.Scale != 1 {
		poly.Scale(opts.Scale)
	}

	text, err := expr.Clip(expr.Var(opts.Var), poly)
	if err != nil {
		return invalid(err)
	}
	area, err := poly.Area()
	if err != nil {
		return invalid(err)
	}

	result := ClipResult{Expression: text, Area: area, Points: poly.Points()}
	for _, s := range opts.Contains {
		lat, lon, err := parseLatLon(s)
		if err != nil {
			return invalid(err)
		}
		inside, err := poly.Contains(lat, lon)
		if err != nil {
			return invalid(err)
		}
		if result.Contains == nil {
			result.Contains = map[string]bool{}
		}
		result.Contains[s] = inside
	}
	if opts.GeoJSON {
		if result.GeoJSON, err = poly.Feature(); err != nil {
			return invalid(err)
		}
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, result.Expression)
	formatter.VerboseLog("area: %g", result.Area)
	for _, s := range opts.Contains {
		fmt.Fprintf(w, "%s inside: %t\n", s, result.Contains[s])
	}
	if result.GeoJSON != nil {
		data, err := json.Marshal(result.GeoJSON)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
	}
	return nil
}

// parseLatLon splits "lat,lon".
func parseLatLon(s string) (float64, float64, error) {
	latText, lonText, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q: expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: latitude: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: longitude: %w", s, err)
	}
	return lat, lon, nil
}
