// Package portfolio converts a photo spreadsheet exported as CSV into the
// JSON data file the portfolio page renders.
package portfolio
