// Package template defines the template engine contract the page renderers
// depend on. The pongo2-backed implementation lives in the gotemplate
// subpackage.
package template
