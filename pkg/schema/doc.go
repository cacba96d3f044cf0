// Package schema defines the declarative form document: a title plus an
// ordered list of field descriptors, each optionally carrying nested dependent
// questions. It also owns the text codec (Parse/Serialize) the sync session
// uses to mirror a schema into an editable JSON representation.
package schema
