package capture

import (
	"fmt"

	"github.com/abdul-hamid-achik/bookcheck/packages/http"
	"github.com/tidwall/gjson"
)

// Capture copies the value at a gjson Path of the response body into the
// run context under Key.
type Capture struct {
	Key  string
	Path string
}

// MissingError is returned when a capture path does not exist in the body.
type MissingError struct {
	Key  string
	Path string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("capture %q: path %q not found in response body", e.Key, e.Path)
}

type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
	}
	return e
}

// Extract returns the value at path. An empty path yields the whole body.
func (e *Extractor) Extract(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" && len(e.response.Body) > 0 {
			return e.response.BodyString(), true
		}
		return nil, false
	}

	if path == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// ExtractAll resolves every capture. All captures are required.
func ExtractAll(resp *http.Response, captures []Capture) (map[string]any, error) {
	extractor := NewExtractor(resp)
	results := make(map[string]any, len(captures))

	for _, c := range captures {
		value, ok := extractor.Extract(c.Path)
		if !ok {
			return nil, &MissingError{Key: c.Key, Path: c.Path}
		}
		results[c.Key] = value
	}

	return results, nil
}

// Keys lists the context keys a set of captures writes.
func Keys(captures []Capture) []string {
	keys := make([]string, len(captures))
	for i, c := range captures {
		keys[i] = c.Key
	}
	return keys
}
