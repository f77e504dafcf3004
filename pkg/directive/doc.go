// Package directive turns planned batches into Directives for the external
// mover and persists their include lists.
//
// A Directive is structured data. Text for a particular tool is produced only
// by a Formatter at the output boundary, so the planning code never deals
// with command-line syntax.
package directive
