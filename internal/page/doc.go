// Package page holds a minimal structural model of a site page: an optional
// front-matter preamble made of statements, followed by the template body.
// Normalization and synthesis operate on this model and only serialize to
// text at the file boundary.
package page
