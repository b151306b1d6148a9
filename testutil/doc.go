// Package testutil builds matrix store files for tests.
//
// This package is intended for use in tests and benchmarks only.
//
// # Fixture Files
//
//	path := testutil.BuildFile(t, testutil.Fixture{
//	    Dates:     []string{"2024-01-01", "2024-02-01"},
//	    Practices: []string{"A81001", "X123"},
//	    Presentations: []testutil.Presentation{
//	        {BNFCode: "0601023AWAAAAAA", Items: []float64{1, 2, 3, 4}},
//	    },
//	})
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	f := rng.Fixture(50, 12, 200) // practices, dates, presentations
package testutil
