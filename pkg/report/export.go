package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/config"
	"github.com/XiaoConstantine/evoidea-go/pkg/errors"
	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

// Export presets.
const (
	PresetLanding          = "landing"
	PresetDecisionLog      = "decision-log"
	PresetStakeholderBrief = "stakeholder-brief"
	PresetChangelogEntry   = "changelog-entry"
)

// Export renders a completed run through one of the preset templates.
// It returns the rendered document and the conventional file name for
// it; the caller decides whether to write it anywhere.
func Export(store storage.Storage, runID uuid.UUID, preset string) (string, string, error) {
	final, err := store.LoadFinal(runID)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ResourceNotFound, "run has no final result yet")
	}
	cfg, err := store.LoadConfig(runID)
	if err != nil {
		return "", "", err
	}
	state, err := store.LoadState(runID)
	if err != nil {
		return "", "", err
	}

	switch preset {
	case PresetLanding:
		return landingPage(&final, &cfg), "landing.md", nil
	case PresetDecisionLog:
		return decisionLog(store, &final, &cfg, &state), "decision-log.md", nil
	case PresetStakeholderBrief:
		return stakeholderBrief(&final, &cfg), "stakeholder-brief.md", nil
	case PresetChangelogEntry:
		return changelogEntry(&final, &cfg, &state), "changelog-entry.md", nil
	default:
		return "", "", errors.WithFields(
			errors.New(errors.InvalidInput,
				"unknown preset (supported: landing, decision-log, stakeholder-brief, changelog-entry)"),
			errors.Fields{"preset": preset})
	}
}

// productName trims a title to the part before the first colon.
func productName(title string) string {
	name, _, _ := strings.Cut(title, ":")
	return strings.TrimSpace(name)
}

// tagline keeps the first sentence of a summary.
func tagline(summary string) string {
	first, _, _ := strings.Cut(summary, ".")
	return strings.TrimSpace(first)
}

// stopReason digs the terminal reason out of the event log. Empty when
// no stopped event was recorded.
func stopReason(store storage.Storage, runID uuid.UUID) string {
	events, err := store.LoadEvents(runID)
	if err != nil {
		return ""
	}
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != idea.EventStopped {
			continue
		}
		var payload struct {
			Reason string `json:"reason"`
		}
		if json.Unmarshal(events[i].Payload, &payload) == nil {
			return payload.Reason
		}
	}
	return ""
}

func landingPage(final *idea.FinalResult, cfg *config.RunConfig) string {
	best := final.Best
	f := best.Facets

	var b strings.Builder
	fmt.Fprintf(&b, "<!-- Source: %s | Score: %.1f/10 -->\n", final.RunID, best.OverallScore)
	if cfg.Prompt != "" {
		fmt.Fprintf(&b, "<!-- Prompt: %s -->\n", cfg.Prompt)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "# %s\n\n", productName(best.Title))
	fmt.Fprintf(&b, "**%s**\n\n", tagline(best.Summary))

	b.WriteString("## The Problem\n\n")
	fmt.Fprintf(&b, "%s\n\n", f.JTBD)

	b.WriteString("## Why Choose Us\n\n")
	fmt.Fprintf(&b, "**1. Unique Approach:** %s\n\n", f.Differentiator)
	fmt.Fprintf(&b, "**2. Built For:** %s\n\n", f.Audience)
	fmt.Fprintf(&b, "**3. Clear Path to Value:** %s\n\n", f.Distribution)

	b.WriteString("## Get Started\n\n")
	fmt.Fprintf(&b, "**Pricing:** %s\n\n", f.Monetization)
	b.WriteString("[Start Free Trial] [Book a Demo]\n\n")

	b.WriteString("## Our Commitment\n\n")
	fmt.Fprintf(&b, "We know the challenges: %s\n\n", f.Risks)
	b.WriteString("That's why we're committed to helping you succeed.\n\n")

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Evolution Score: %.1f/10*\n", best.OverallScore)
	return b.String()
}

func decisionLog(store storage.Storage, final *idea.FinalResult, cfg *config.RunConfig, state *idea.State) string {
	best := final.Best
	f := best.Facets

	var b strings.Builder
	fmt.Fprintf(&b, "# Decision Log: %s\n\n", best.Title)
	fmt.Fprintf(&b, "**Date:** %s\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "**Run ID:** `%s`\n", final.RunID)
	b.WriteString("**Status:** Decided\n\n")

	b.WriteString("## Context\n\n")
	fmt.Fprintf(&b, "**Problem Statement:** %s\n\n", cfg.Prompt)
	fmt.Fprintf(&b, "**Target Audience:** %s\n\n", f.Audience)

	b.WriteString("## Decision\n\n")
	fmt.Fprintf(&b, "**Selected:** %s\n\n", best.Title)
	fmt.Fprintf(&b, "%s\n\n", best.Summary)

	b.WriteString("## Rationale\n\n")
	fmt.Fprintf(&b, "- **Confidence Score:** %.1f/10\n", best.OverallScore)
	fmt.Fprintf(&b, "- **Key Differentiator:** %s\n", f.Differentiator)
	fmt.Fprintf(&b, "- **Problem Solved:** %s\n\n", f.JTBD)

	b.WriteString("## Alternatives Considered\n\n")
	fmt.Fprintf(&b, "- **Total evaluated:** %d ideas over %d iterations\n",
		len(state.Ideas), state.Iteration)
	if len(final.RunnersUp) > 0 {
		r := final.RunnersUp[0]
		fmt.Fprintf(&b, "- **Runner-up:** %s (%.1f/10)\n", r.Title, r.OverallScore)
	}
	b.WriteString("- **Selection method:** Evolutionary algorithm with scoring\n")
	if reason := stopReason(store, final.RunID); reason != "" {
		fmt.Fprintf(&b, "- **Stop reason:** %s\n", reason)
	}
	b.WriteString("\n")

	b.WriteString("## Risks & Mitigations\n\n")
	fmt.Fprintf(&b, "%s\n\n", f.Risks)

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Generated by evoidea | Run: %s | Score: %.1f/10*\n",
		final.RunID, best.OverallScore)
	return b.String()
}

func stakeholderBrief(final *idea.FinalResult, cfg *config.RunConfig) string {
	best := final.Best
	f := best.Facets

	confidence := "Low"
	switch {
	case best.OverallScore >= 7.0:
		confidence = "High"
	case best.OverallScore >= 5.0:
		confidence = "Medium"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Executive Summary\n\n", productName(best.Title))

	b.WriteString("## The Opportunity\n\n")
	fmt.Fprintf(&b, "**Direction explored:** %s\n\n", cfg.Prompt)
	fmt.Fprintf(&b, "**Recommended approach:** %s\n\n", best.Title)
	fmt.Fprintf(&b, "%s\n\n", best.Summary)

	b.WriteString("## Key Points\n\n")
	b.WriteString("| Aspect | Details |\n")
	b.WriteString("|--------|----------|\n")
	fmt.Fprintf(&b, "| Target Market | %s |\n", f.Audience)
	fmt.Fprintf(&b, "| Problem Solved | %s |\n", f.JTBD)
	fmt.Fprintf(&b, "| Competitive Edge | %s |\n", f.Differentiator)
	fmt.Fprintf(&b, "| Revenue Model | %s |\n", f.Monetization)
	fmt.Fprintf(&b, "| Go-to-Market | %s |\n\n", f.Distribution)

	b.WriteString("## Confidence Assessment\n\n")
	fmt.Fprintf(&b, "**Overall Confidence:** %s (%.1f/10)\n\n", confidence, best.OverallScore)
	b.WriteString("This assessment is based on automated evaluation of feasibility, market potential, differentiation, and risk factors.\n\n")

	b.WriteString("## Known Risks\n\n")
	fmt.Fprintf(&b, "%s\n\n", f.Risks)

	b.WriteString("## Next Steps\n\n")
	b.WriteString("1. Review and validate assumptions with domain experts\n")
	b.WriteString("2. Conduct customer discovery interviews\n")
	b.WriteString("3. Build minimal prototype for early feedback\n\n")

	b.WriteString("---\n")
	fmt.Fprintf(&b, "*Generated by evoidea | %s | Confidence: %.1f/10*\n",
		final.RunID, best.OverallScore)
	return b.String()
}

func changelogEntry(final *idea.FinalResult, cfg *config.RunConfig, state *idea.State) string {
	best := final.Best
	f := best.Facets

	var b strings.Builder
	fmt.Fprintf(&b, "## [Ideation] %s - %s\n\n",
		productName(best.Title), time.Now().UTC().Format("2006-01-02"))

	b.WriteString("### Added\n\n")
	fmt.Fprintf(&b, "- **New concept explored:** %s\n", best.Title)
	fmt.Fprintf(&b, "- **Problem space:** %s\n", cfg.Prompt)
	fmt.Fprintf(&b, "- **Target users:** %s\n\n", f.Audience)

	b.WriteString("### Details\n\n")
	fmt.Fprintf(&b, "%s\n\n", best.Summary)
	fmt.Fprintf(&b, "**Core value:** %s\n\n", f.JTBD)

	b.WriteString("### Metrics\n\n")
	fmt.Fprintf(&b, "- Confidence score: %.1f/10\n", best.OverallScore)
	fmt.Fprintf(&b, "- Evolution iterations: %d\n", state.Iteration)
	fmt.Fprintf(&b, "- Run ID: `%s`\n\n", final.RunID)

	b.WriteString("---\n")
	b.WriteString("*Entry generated by evoidea evolutionary ideation*\n")
	return b.String()
}
