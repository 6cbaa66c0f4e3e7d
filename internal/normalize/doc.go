// Package normalize brings a tree of existing pages into line with the
// site's layout and sidebar conventions. A run first computes a Plan of
// per-file changes; dry runs report it and real runs apply it with one-time
// backups.
package normalize
