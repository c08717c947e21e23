// Package schema defines the component schema model: a recursive, sealed union of
// six kinds (form, child, relationship, object, conditional, array) describing the
// shape of the props stored inside a component block. Schemas are plain data; the
// resolve, preview and editor packages walk them with exhaustive type switches and
// call Unreachable for anything outside the union.
//
// Values are the dynamic shapes produced by encoding/json: map[string]any for
// objects and conditionals ({"discriminant": ..., "value": ...}), []any for arrays
// and many relationships, nil for null, and scalars for form values.
package schema
