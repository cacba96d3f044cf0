// Package openapi exposes the public contracts for importing a form schema
// from an OpenAPI 3 document: a Loader fetches the raw document, a Parser
// turns it into Operation wrappers, and FormFromOperation maps an operation's
// request body onto field descriptors. Implementations live under
// internal/openapi to keep kin-openapi out of the public API.
package openapi
