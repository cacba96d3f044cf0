// Package render turns schema documents into HTML node trees. RenderField and
// RenderForm are pure functions of their input plus the Binder they are given;
// the Binder is how radio groups get wired to the reveal controller. The
// package also defines the Output contract used by the page, fragment, and text
// renderers and the registry that looks them up by name.
package render
