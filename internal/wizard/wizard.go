// Package wizard collects a lead request interactively when the run command
// is invoked without flags.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/leadmesh/leadgen/internal/lead"
)

// RunLeadWizard runs an interactive huh form to collect a lead request.
// If initialType is non-empty, it pre-populates the freelancer type field.
func RunLeadWizard(in io.Reader, out io.Writer, initialType string) (*lead.Request, error) {
	var (
		freelancerType = initialType
		location       string
		servicesRaw    string
		industriesRaw  string
		sellingRaw     string
		leadCountRaw   = "10"
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Freelancer type").
				Description("What kind of freelancer are you?").
				Placeholder("web developer").
				Value(&freelancerType).
				Validate(requireValue("freelancer type")),
			huh.NewInput().
				Title("Location").
				Description("The city or region to search for leads in").
				Placeholder("Ottawa, ON").
				Value(&location).
				Validate(requireValue("location")),
			huh.NewInput().
				Title("Services").
				Description("Comma-separated services you offer").
				Placeholder("SEO, site redesign, performance audits").
				Value(&servicesRaw).
				Validate(requireValue("at least one service")),
			huh.NewInput().
				Title("Target industries").
				Description("Optional comma-separated industries to focus on").
				Placeholder("restaurants, dental clinics").
				Value(&industriesRaw),
			huh.NewInput().
				Title("Selling points").
				Description("Optional comma-separated reasons clients pick you").
				Placeholder("10 years experience, local references").
				Value(&sellingRaw),
			huh.NewInput().
				Title("Number of leads").
				Description("How many leads to request (1-50)").
				Value(&leadCountRaw).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("must be a number")
					}
					if n < 1 || n > 50 {
						return fmt.Errorf("must be between 1 and 50")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	count, _ := strconv.Atoi(strings.TrimSpace(leadCountRaw))
	req := &lead.Request{
		FreelancerType:   strings.TrimSpace(freelancerType),
		Location:         strings.TrimSpace(location),
		Services:         splitAndTrim(servicesRaw),
		TargetIndustries: splitAndTrim(industriesRaw),
		SellingPoints:    splitAndTrim(sellingRaw),
		LeadCount:        count,
	}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid lead request: %s", strings.Join(errs, "; "))
	}
	return req, nil
}

func requireValue(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
