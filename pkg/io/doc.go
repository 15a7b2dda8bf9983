// Package io provides JSON import and export for the autocomplete city list.
//
// # JSON Format
//
// The output is a single array of three-element arrays, one per place:
//
//	[
//	  ["New York", "NY", 100000],
//	  ["Manhattan", "NY", 100000]
//	]
//
// The first element is the city name in title case, the second the
// uppercase state code, the third the estimated population. Elements keep
// the order they were produced in; sorting by population is left to the
// consumer of the file.
//
// # Export
//
// Use [Project] to turn deduplicated places into [City] values, then
// [ExportJSON] to write them to a file or [WriteJSON] to write to any
// io.Writer:
//
//	cities := io.Project(places)
//	if err := io.ExportJSON(cities, "cities.json"); err != nil {
//	    log.Fatal(err)
//	}
//
// [ExportJSON] writes to a temporary file in the target directory and
// renames it into place, so a failed export never leaves a truncated file
// and never touches a previous output.
//
// # Import
//
// [ReadJSON] and [ImportJSON] decode the same format. They are used to
// verify cached artifacts before reuse.
package io
