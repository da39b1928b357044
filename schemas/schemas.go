// Package schemas holds the embedded JSON Schema documents used for
// request validation.
package schemas

import _ "embed"

// LeadRequestJSON is the JSON Schema for lead-generation intake requests.
//
//go:embed lead_request.schema.json
var LeadRequestJSON string
