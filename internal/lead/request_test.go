package lead

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptIncludesAllFields(t *testing.T) {
	req := Request{
		FreelancerType:   "web developer",
		Location:         "Ottawa, ON",
		Services:         []string{"SEO", "redesign"},
		TargetIndustries: []string{"dentists"},
		SellingPoints:    []string{"fast turnaround"},
		LeadCount:        5,
	}

	prompt := req.Prompt()
	assert.Contains(t, prompt, "5 leads")
	assert.Contains(t, prompt, "web developer")
	assert.Contains(t, prompt, "Ottawa, ON")
	assert.Contains(t, prompt, "SEO, redesign")
	assert.Contains(t, prompt, "Target industries: dentists.")
	assert.Contains(t, prompt, "Key selling points: fast turnaround.")
}

func TestPromptOmitsEmptyOptionalSections(t *testing.T) {
	req := Request{
		FreelancerType: "web developer",
		Location:       "Ottawa, ON",
		Services:       []string{"SEO"},
		LeadCount:      3,
	}

	prompt := req.Prompt()
	assert.NotContains(t, prompt, "Target industries")
	assert.NotContains(t, prompt, "Key selling points")
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	req := Request{
		FreelancerType: "web developer",
		Location:       "Ottawa, ON",
		Services:       []string{"SEO", "redesign"},
		LeadCount:      5,
	}
	assert.Empty(t, req.Validate())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	req := Request{Location: "Ottawa, ON"}

	errs := req.Validate()
	assert.NotEmpty(t, errs)

	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "freelancer_type")
}

func TestValidateBytesRejectsMalformedJSON(t *testing.T) {
	errs := ValidateBytes([]byte("{not json"))
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "JSON parse error")
}

func TestValidateBytesRejectsOutOfRangeLeadCount(t *testing.T) {
	body := []byte(`{
		"freelancer_type": "web developer",
		"location": "Ottawa, ON",
		"services": ["SEO"],
		"lead_count": 0
	}`)
	errs := ValidateBytes(body)
	assert.NotEmpty(t, errs)
}

func TestValidateBytesRejectsUnknownFields(t *testing.T) {
	body := []byte(`{
		"freelancer_type": "web developer",
		"location": "Ottawa, ON",
		"services": ["SEO"],
		"lead_count": 5,
		"budget": 1000
	}`)
	errs := ValidateBytes(body)
	assert.NotEmpty(t, errs)
}
