// Package dataset reads the movie metadata CSV into a Table and cleans it.
//
// Load sniffs the byte encoding, decodes with the first candidate that
// succeeds and parses the text through a gota dataframe. Clean returns a new
// Table in which Year, Duration, Votes and Rating are numeric cells or
// Missing; a value that cannot be coerced never aborts the run.
package dataset
