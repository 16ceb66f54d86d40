// Package capture extracts values from HTTP responses for use in later steps.
//
// Values are addressed with gjson paths into the JSON body. A step that
// declares a capture fails when the path is absent, so later steps never see
// a half-populated context.
package capture
