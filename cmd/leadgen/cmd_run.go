package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadmesh/leadgen/internal/gateway"
	"github.com/leadmesh/leadgen/internal/lead"
	"github.com/leadmesh/leadgen/internal/projectconfig"
	"github.com/leadmesh/leadgen/internal/spinner"
	"github.com/leadmesh/leadgen/internal/transcript"
	"github.com/leadmesh/leadgen/internal/wizard"
)

func newRunCommand() *cobra.Command {
	var (
		freelancerType string
		location       string
		services       []string
		industries     []string
		sellingPoints  []string
		leadCount      int

		gatewayURL string
		agentName  string
		resultsDir string
		compress   bool
		noSave     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a lead-generation request and stream the results",
		Long: `Submit a lead-generation request to the agent gateway and stream the
agents' progress to the terminal.

With no flags, an interactive wizard collects the request. Passing
--type, --location and at least one --service skips the wizard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			// CLI flags override project config
			if gatewayURL != "" {
				cfg.Gateway.URL = gatewayURL
			}
			if agentName != "" {
				cfg.Gateway.Agent = agentName
			}
			if resultsDir != "" {
				cfg.Results.Dir = resultsDir
			}
			if compress {
				cfg.Results.Compress = &compress
			}

			req, err := collectRequest(cmd, wizardFields{
				freelancerType: freelancerType,
				location:       location,
				services:       services,
				industries:     industries,
				sellingPoints:  sellingPoints,
				leadCount:      leadCount,
			})
			if err != nil {
				return err
			}

			return runLead(cmd, cfg, req, noSave)
		},
	}

	cmd.Flags().StringVar(&freelancerType, "type", "", "Freelancer type (e.g. \"web developer\")")
	cmd.Flags().StringVar(&location, "location", "", "City or region to search in")
	cmd.Flags().StringArrayVar(&services, "service", nil, "Service you offer (can be repeated)")
	cmd.Flags().StringArrayVar(&industries, "industry", nil, "Target industry (can be repeated)")
	cmd.Flags().StringArrayVar(&sellingPoints, "selling-point", nil, "Selling point (can be repeated)")
	cmd.Flags().IntVar(&leadCount, "count", 10, "Number of leads to request (1-50)")
	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "Gateway base URL (overrides .leadgen.yaml)")
	cmd.Flags().StringVar(&agentName, "agent", "", "Orchestrating agent name (overrides .leadgen.yaml)")
	cmd.Flags().StringVarP(&resultsDir, "output", "o", "", "Directory to save the transcript to")
	cmd.Flags().BoolVar(&compress, "compress", false, "Save the transcript as a gzip archive")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not save the transcript")

	return cmd
}

// wizardFields carries the flag values that can pre-empt the wizard.
type wizardFields struct {
	freelancerType string
	location       string
	services       []string
	industries     []string
	sellingPoints  []string
	leadCount      int
}

// collectRequest builds the lead request from flags, falling back to the
// interactive wizard when the required fields are missing.
func collectRequest(cmd *cobra.Command, f wizardFields) (*lead.Request, error) {
	if f.freelancerType != "" && f.location != "" && len(f.services) > 0 {
		req := &lead.Request{
			FreelancerType:   f.freelancerType,
			Location:         f.location,
			Services:         f.services,
			TargetIndustries: f.industries,
			SellingPoints:    f.sellingPoints,
			LeadCount:        f.leadCount,
		}
		if errs := req.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("invalid lead request: %v", errs)
		}
		return req, nil
	}

	return wizard.RunLeadWizard(cmd.InOrStdin(), cmd.OutOrStdout(), f.freelancerType)
}

// runLead submits the request, streams the transcript to the terminal, and
// persists it once the task ends.
func runLead(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, req *lead.Request, noSave bool) error {
	out := cmd.OutOrStdout()

	client := gateway.NewClient(cfg.Gateway.URL, cfg.Gateway.Agent,
		gateway.WithIdleTimeout(time.Duration(cfg.Gateway.IdleTimeout)*time.Second))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sp := spinner.Start(cmd.ErrOrStderr(), "submitting request")

	submitCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Gateway.SubmitTimeout)*time.Second)
	taskID, err := client.Submit(submitCtx, *req)
	cancel()
	if err != nil {
		sp.Stop()
		return err
	}

	startedAt := time.Now()
	sp.SetMessage("waiting for agents")

	// The subscription is detached from the signal context so Ctrl-C tears
	// it down as a deliberate close rather than a connection failure.
	sub := client.Subscribe(context.Background(), taskID)
	defer sub.Close()
	updates := sub.Updates()

	printed := 0
	flush := func() {
		entries := sub.Snapshot()
		if printed == len(entries) {
			return
		}
		sp.Stop()
		for ; printed < len(entries); printed++ {
			fmt.Fprintln(out, formatEntry(entries[printed]))
		}
		sp = spinner.Start(cmd.ErrOrStderr(), "agents working")
	}

	interrupted := false
loop:
	for {
		select {
		case <-updates:
			flush()
		case <-sub.Done():
			flush()
			break loop
		case <-ctx.Done():
			interrupted = true
			sub.Close()
			<-sub.Done()
			flush()
			break loop
		}
	}
	sp.Stop()

	if !noSave {
		path, err := saveTranscript(cfg, taskID, req, sub, startedAt)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nTranscript saved to: %s\n", path)
	}

	if msg := sub.ErrorMessage(); msg != "" {
		return &TaskFailureError{Message: msg}
	}
	if interrupted {
		return &TaskFailureError{Message: "interrupted before the task finished"}
	}
	if !sub.Complete() {
		return &TaskFailureError{Message: "task ended before a final response"}
	}
	return nil
}

func saveTranscript(cfg *projectconfig.ProjectConfig, taskID string, req *lead.Request, sub *gateway.Subscription, startedAt time.Time) (string, error) {
	rec := &transcript.Record{
		TaskID:      taskID,
		Request:     *req,
		Complete:    sub.Complete(),
		ErrorMsg:    sub.ErrorMessage(),
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Entries:     sub.Snapshot(),
	}

	if cfg.Results.Compress != nil && *cfg.Results.Compress {
		return transcript.WriteArchive(cfg.Results.Dir, rec)
	}
	return transcript.Write(cfg.Results.Dir, rec)
}
