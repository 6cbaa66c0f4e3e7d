// Package scaffold creates new site pages from embedded templates. It powers
// the "pagesmith scaffold" command: it writes a stub page wired to the layout
// and a sidebar LinkList, then files the route in the link registry. The
// section index template it renders is shared with the normalizer.
package scaffold
