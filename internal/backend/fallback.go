package backend

import (
	"fmt"
	"strings"
)

// Fallback results substitute for failed backend calls so a session is never
// left without a card. They are deterministic for a given input.

func FallbackDiagnosis(siteURL string) *DiagnosisReport {
	sub := SubAnalysis{Score: 50, Summary: "Could not be evaluated automatically; manual review recommended."}
	return &DiagnosisReport{
		Score:           50,
		KeywordFit:      sub,
		TopicalAuth:     sub,
		IntentCoverage:  sub,
		Discoverability: sub,
	}
}

func FallbackCompetitors(industry string) []CompetitorCandidate {
	label := strings.TrimSpace(industry)
	if label == "" {
		label = "your industry"
	}
	return []CompetitorCandidate{
		{Name: "Competitor research pending", Rank: 1, Rationale: fmt.Sprintf("Automatic discovery for %s was unavailable. Add competitors manually to continue.", label)},
	}
}

func FallbackCompetitorProfile(candidate CompetitorCandidate) *CompetitorProfile {
	return &CompetitorProfile{Name: candidate.Name, URL: candidate.URL, QualityScore: 50}
}

func FallbackLandscape(profiles []CompetitorProfile) *LandscapeReport {
	return &LandscapeReport{
		Trend:        "Competitive data was unavailable; the landscape view is a placeholder.",
		Disadvantage: "No verified weaknesses identified.",
		Opportunity:  "Re-run the analysis once connectivity is restored for grounded insights.",
		Profiles:     profiles,
	}
}

func FallbackSolutions() []Solution {
	return []Solution{
		{
			ID:      "sol-1",
			Name:    "Foundational Content Hub",
			Goal:    "Build topical authority with evergreen pillar pages.",
			Concept: "Publish a cluster of in-depth guides around your core offering.",
			Examples: []string{
				"Ultimate guide to your core product category",
				"Comparison page against common alternatives",
			},
			Justification: "A default strategy applicable to most sites while analysis data is unavailable.",
		},
		{
			ID:      "sol-2",
			Name:    "Intent-Led Landing Pages",
			Goal:    "Capture high-intent search traffic.",
			Concept: "Create conversion-focused pages targeting transactional queries.",
			Examples: []string{
				"Pricing and plans explainer",
				"Use-case landing page per customer segment",
			},
			Justification: "Transactional intent pages convert regardless of competitive positioning.",
		},
		{
			ID:      "sol-3",
			Name:    "Expert Voice Series",
			Goal:    "Differentiate through first-party expertise.",
			Concept: "Publish opinionated, experience-backed articles on industry shifts.",
			Examples: []string{
				"Quarterly industry trends commentary",
				"Lessons-learned postmortems",
				"Contrarian take on a common best practice",
			},
			Justification: "Original perspective content is defensible even without competitor data.",
		},
	}
}

func FallbackBrief(solution Solution) *ContentBrief {
	title := strings.TrimSpace(solution.Name)
	if title == "" {
		title = "Content piece"
	}
	return &ContentBrief{
		Title:     fmt.Sprintf("%s: getting started", title),
		Keywords:  []string{"seo", "content strategy"},
		Outline:   []string{"Introduction", "Why it matters", "How to apply it", "Conclusion"},
		WordCount: 1200,
		Recommendations: []string{
			"Generated offline; refine the outline before drafting.",
		},
	}
}

func FallbackResearch(brief ContentBrief) string {
	return fmt.Sprintf("Web research for %q was unavailable; the draft relies on the brief alone.", brief.Title)
}

func FallbackOutline(brief ContentBrief) []string {
	if len(brief.Outline) > 0 {
		return append([]string(nil), brief.Outline...)
	}
	return []string{"Introduction", "Main findings", "Recommendations", "Conclusion"}
}

func FallbackDraft(brief ContentBrief) *ArticleDraft {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", brief.Title)
	for _, section := range FallbackOutline(brief) {
		fmt.Fprintf(&b, "## %s\n\nContent for this section could not be generated automatically.\n\n", section)
	}
	return &ArticleDraft{Title: brief.Title, Markdown: b.String()}
}

func FallbackPreflight() *PreflightReport {
	return &PreflightReport{
		Issues: []PreflightIssue{
			{
				Kind:        IssueReadability,
				Description: "Automated preflight could not run; the draft has not been checked.",
				Fix:         "Review the article manually or retry preflight.",
			},
		},
	}
}

func FallbackPublishKit(draft ArticleDraft) *PublishKit {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		title = "Untitled article"
	}
	return &PublishKit{
		SEOTitle:       title,
		SEODescription: fmt.Sprintf("Read our latest article: %s.", title),
	}
}

func FallbackAsset(prompt string) *AssetResult {
	return &AssetResult{
		Description: fmt.Sprintf("Placeholder asset for prompt %q.", strings.TrimSpace(prompt)),
		Data:        "placeholder://asset",
	}
}
