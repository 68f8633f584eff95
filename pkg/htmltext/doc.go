// Package htmltext flattens HTML fragments into plain text, used to derive
// text alternatives and short summaries from HTML notification content.
package htmltext
