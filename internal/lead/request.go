// Package lead defines the lead-generation request model: the structured
// intake parameters, their JSON Schema validation, and the free-text prompt
// rendered for the orchestrating agent.
package lead

import (
	"strings"
	"text/template"
)

// Request holds the structured parameters collected by the intake form.
type Request struct {
	FreelancerType   string   `json:"freelancer_type" yaml:"freelancer_type"`
	Location         string   `json:"location" yaml:"location"`
	Services         []string `json:"services" yaml:"services"`
	TargetIndustries []string `json:"target_industries,omitempty" yaml:"target_industries,omitempty"`
	SellingPoints    []string `json:"selling_points,omitempty" yaml:"selling_points,omitempty"`
	LeadCount        int      `json:"lead_count" yaml:"lead_count"`
}

const promptTemplate = `Find {{ .LeadCount }} leads for a freelance {{ .FreelancerType }} based in {{ .Location }}.

Services offered: {{ join .Services }}.
{{- if .TargetIndustries }}
Target industries: {{ join .TargetIndustries }}.
{{- end }}
{{- if .SellingPoints }}
Key selling points: {{ join .SellingPoints }}.
{{- end }}

For each lead include the business name, website, a contact point if available,
and a short note on why they are a good fit.`

var promptTmpl = template.Must(template.New("prompt").
	Funcs(template.FuncMap{"join": func(ss []string) string { return strings.Join(ss, ", ") }}).
	Parse(promptTemplate))

// Prompt renders the free-text request sent to the orchestrating agent.
func (r Request) Prompt() string {
	var b strings.Builder
	// The template only touches fields of r, so execution cannot fail.
	if err := promptTmpl.Execute(&b, r); err != nil {
		panic("rendering lead prompt: " + err.Error())
	}
	return b.String()
}
