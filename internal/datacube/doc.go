// Package datacube provides the WCPS query builder and executor.
//
// A Datacube collects a query plan through a sequence of calls, renders it
// to WCPS text and sends it through a transport:
//
//	conn, _ := transport.NewHTTPConnection("https://ows.rasdaman.org/rasdaman/ows", transport.Options{})
//	dc, _ := datacube.New(conn)
//	_ = dc.Declare("AvgLandTemp", "c")
//	_ = dc.Subset(`ansi("2014-07")`, "c")
//	_ = dc.SetFormat(ir.FormatPNG)
//	res, err := dc.Execute(ctx) // res.Data holds the PNG bytes
//
// LIFECYCLE:
//
//	EMPTY -> CONFIGURING (any declare/bind/set call) -> EXECUTED -> EMPTY
//
// Execute always resets the builder before returning, whatever the outcome,
// so a Datacube is single-shot per plan while keeping its transport.
//
// VALIDATION:
//
// Every call validates its input immediately and leaves the builder
// unchanged on error. Expressions may reference only declared variables
// (UNKNOWN_VARIABLE otherwise); filters, transformations and aggregation
// conditions must reference at least one (MISSING_REFERENCE). Switch
// branches are the exception: they are stored unchecked.
//
// CONCURRENCY:
//
// A Datacube is not safe for concurrent use. Use one builder per logical
// query.
package datacube
