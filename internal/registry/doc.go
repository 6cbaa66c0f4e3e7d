// Package registry reads and extends the site's link registry: a single
// document declaring named, ordered lists of {href, label} records that
// drive sidebars and section navigation.
//
// Two document forms are supported. An ES module (registry.ts) declares each
// list as `export const name = [ { href: '…', label: '…' }, … ];` and is
// edited in place so untouched text survives byte for byte. A YAML document
// maps list names to sequences of href/label mappings. YAML registries are
// re-encoded as a whole on every append: comments and scalar quoting survive,
// but indentation is normalised to two spaces.
//
// Lists are append-only under this package: AppendIfAbsent adds at the tail
// and never reorders, and an href already present in a list is skipped.
package registry
