// Package features turns a cleaned movie table into model inputs.
//
// Prepare keeps rows that have a Rating, ordinal-encodes Year, Duration and
// Votes over all of them, splits with a seeded permutation and fills missing
// predictors with medians of the training partition alone.
package features
