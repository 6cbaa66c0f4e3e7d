// Package config loads the project configuration from pagesmith.yaml in the
// site root. The embedded defaults describe the site's page layout, import
// aliases, and the section-index and detail-group mapping tables; a project
// file overrides any of them and is validated against an embedded JSON
// Schema before use.
package config
