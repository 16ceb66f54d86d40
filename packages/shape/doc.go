// Package shape declares the expected structure of JSON response bodies and
// validates bodies against it.
//
// A Shape is a list of fields (dotted paths) with a primitive type and a
// required flag. Shapes are rendered to JSON Schema and checked with
// gojsonschema; unknown fields in the body are always accepted.
package shape
