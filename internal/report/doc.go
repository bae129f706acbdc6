// Package report computes the descriptive statistics of a cleaned movie table
// and renders them as console tables and PNG charts.
//
// Every aggregate is a read-only function of the table, so they can run in
// any order. Build gathers them into a Report; Render writes the tables and
// WriteCharts draws the matching charts with gonum/plot.
package report
