// Package zipcode reads the United States ZIP-code reference dataset.
//
// The dataset is the CSV published by unitedstateszipcodes.org: one row per
// ZIP code with its mail type, primary city, acceptable alias cities, state,
// coordinates, country and estimated population. The file is ISO-8859-1
// encoded and starts with a header row.
//
// # Records
//
// Each retained row yields one [Location] and zero or more [Alias] records,
// one per acceptable city name. Both implement [Place], which exposes the
// identity [Key] (city, state) and the estimated population used to
// deduplicate places downstream.
//
// # Filtering
//
// Rows outside the US, rows with a MILITARY mail type, and rows whose state
// is not in [States] are dropped together with their aliases. Other data
// problems (missing coordinates, zip or city, malformed numbers) are logged
// and the row is kept.
//
// # Usage
//
//	p := zipcode.NewParser(logger)
//	res, err := p.ParseFile("zip_code_database.csv")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(res.Locations), len(res.Aliases))
package zipcode
