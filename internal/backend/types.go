package backend

import (
	"context"
	"fmt"
	"strings"
)

// Backend is the procedure-per-task contract to the AI vendor. Every method
// validates the response shape before returning; a shape violation surfaces
// as ErrMalformed so callers can take the deterministic fallback path.
type Backend interface {
	Diagnose(ctx context.Context, req DiagnoseRequest) (*DiagnosisReport, error)
	FindCompetitors(ctx context.Context, req CompetitorSearchRequest) ([]CompetitorCandidate, error)
	AnalyzeCompetitor(ctx context.Context, req CompetitorAnalysisRequest) (*CompetitorProfile, error)
	SummarizeLandscape(ctx context.Context, req LandscapeRequest) (*LandscapeReport, error)
	GenerateSolutions(ctx context.Context, req SolutionRequest) ([]Solution, error)
	GenerateBrief(ctx context.Context, req BriefRequest) (*ContentBrief, error)

	ResearchTopic(ctx context.Context, req ResearchRequest) (string, error)
	OutlineArticle(ctx context.Context, req OutlineRequest) ([]string, error)
	DraftArticle(ctx context.Context, req DraftRequest) (*ArticleDraft, error)
	PolishArticle(ctx context.Context, req PolishRequest) (*ArticleDraft, error)
	EmbedImages(ctx context.Context, req EmbedImagesRequest) (*ArticleDraft, error)
	RunPreflight(ctx context.Context, req PreflightRequest) (*PreflightReport, error)
	RewriteForIssues(ctx context.Context, req RewriteRequest) (*ArticleDraft, error)

	GeneratePublishKit(ctx context.Context, req PublishRequest) (*PublishKit, error)
	Classify(ctx context.Context, req ClassifyRequest) (*Intent, error)

	GenerateImage(ctx context.Context, req AssetRequest) (*AssetResult, error)
	GenerateVideo(ctx context.Context, req AssetRequest) (*AssetResult, error)
}

type DiagnoseRequest struct {
	SiteURL      string `json:"site_url"`
	Instructions string `json:"instructions,omitempty"`
}

// SubAnalysis is one of the four diagnosis dimensions.
type SubAnalysis struct {
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

type DiagnosisReport struct {
	Score           int         `json:"score"`
	KeywordFit      SubAnalysis `json:"keyword_fit"`
	TopicalAuth     SubAnalysis `json:"topical_authority"`
	IntentCoverage  SubAnalysis `json:"intent_coverage"`
	Discoverability SubAnalysis `json:"discoverability"`
}

func (r *DiagnosisReport) validate() error {
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("score %d out of range", r.Score)
	}
	for _, sub := range []SubAnalysis{r.KeywordFit, r.TopicalAuth, r.IntentCoverage, r.Discoverability} {
		if sub.Score < 0 || sub.Score > 100 {
			return fmt.Errorf("sub-analysis score %d out of range", sub.Score)
		}
	}
	return nil
}

type CompetitorSearchRequest struct {
	SiteURL      string `json:"site_url"`
	Industry     string `json:"industry"`
	Instructions string `json:"instructions,omitempty"`
}

type CompetitorCandidate struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Rationale string `json:"rationale,omitempty"`
	Rank      int    `json:"rank"`
	IsManual  bool   `json:"is_manual,omitempty"`
}

type CompetitorAnalysisRequest struct {
	Candidate    CompetitorCandidate `json:"candidate"`
	Industry     string              `json:"industry"`
	Instructions string              `json:"instructions,omitempty"`
}

type Citation struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

type CompetitorProfile struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	QualityScore int       `json:"quality_score"`
	TopArticle   *Citation `json:"top_article,omitempty"`
}

func (p *CompetitorProfile) validate() error {
	if p.QualityScore < 0 || p.QualityScore > 100 {
		return fmt.Errorf("quality score %d out of range", p.QualityScore)
	}
	return nil
}

type LandscapeRequest struct {
	SiteURL      string              `json:"site_url"`
	Industry     string              `json:"industry"`
	Profiles     []CompetitorProfile `json:"profiles"`
	Instructions string              `json:"instructions,omitempty"`
}

// LandscapeReport is the aggregate competitive narrative joined from the
// per-competitor profiles.
type LandscapeReport struct {
	Trend        string              `json:"trend"`
	Disadvantage string              `json:"disadvantage"`
	Opportunity  string              `json:"opportunity"`
	Profiles     []CompetitorProfile `json:"profiles"`
	Citations    []Citation          `json:"citations,omitempty"`
}

func (r *LandscapeReport) validate() error {
	if strings.TrimSpace(r.Trend) == "" && strings.TrimSpace(r.Opportunity) == "" {
		return fmt.Errorf("landscape narrative empty")
	}
	return nil
}

type SolutionRequest struct {
	SiteURL      string           `json:"site_url"`
	Industry     string           `json:"industry"`
	Landscape    *LandscapeReport `json:"landscape"`
	BrandVoice   string           `json:"brand_voice,omitempty"`
	Keywords     []string         `json:"keywords,omitempty"`
	Instructions string           `json:"instructions,omitempty"`
}

type Solution struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Goal          string   `json:"goal"`
	Concept       string   `json:"concept"`
	Examples      []string `json:"examples"`
	Justification string   `json:"justification"`
}

func validateSolutions(solutions []Solution) error {
	if len(solutions) != 3 {
		return fmt.Errorf("expected 3 solutions, got %d", len(solutions))
	}
	for i, sol := range solutions {
		if strings.TrimSpace(sol.Name) == "" {
			return fmt.Errorf("solution %d missing name", i+1)
		}
		if len(sol.Examples) < 2 || len(sol.Examples) > 3 {
			return fmt.Errorf("solution %q has %d examples", sol.Name, len(sol.Examples))
		}
	}
	return nil
}

type BriefRequest struct {
	SiteURL      string   `json:"site_url"`
	Solution     Solution `json:"solution"`
	Keywords     []string `json:"keywords,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

type ContentBrief struct {
	Title           string   `json:"title"`
	Keywords        []string `json:"keywords"`
	Outline         []string `json:"outline"`
	WordCount       int      `json:"word_count"`
	Recommendations []string `json:"recommendations,omitempty"`
}

func (b *ContentBrief) validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("brief title empty")
	}
	if len(b.Outline) == 0 {
		return fmt.Errorf("brief outline empty")
	}
	if b.WordCount <= 0 {
		return fmt.Errorf("brief word count %d invalid", b.WordCount)
	}
	return nil
}

type ResearchRequest struct {
	Brief    ContentBrief `json:"brief"`
	Industry string       `json:"industry"`
}

type OutlineRequest struct {
	Brief    ContentBrief `json:"brief"`
	Research string       `json:"research"`
}

type DraftRequest struct {
	Brief   ContentBrief `json:"brief"`
	Outline []string     `json:"outline"`
}

type PolishRequest struct {
	Draft ArticleDraft `json:"draft"`
	Brief ContentBrief `json:"brief"`
}

type EmbedImagesRequest struct {
	Draft ArticleDraft `json:"draft"`
}

type ArticleDraft struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

func (d *ArticleDraft) validate() error {
	if strings.TrimSpace(d.Markdown) == "" {
		return fmt.Errorf("draft body empty")
	}
	return nil
}

// IssueKind classifies a preflight finding.
type IssueKind string

const (
	IssueKeywordUsage IssueKind = "keyword_usage"
	IssueStructure    IssueKind = "structure"
	IssueBrandVoice   IssueKind = "brand_voice"
	IssueReadability  IssueKind = "readability"
)

type PreflightIssue struct {
	Kind        IssueKind `json:"kind"`
	Description string    `json:"description"`
	Fix         string    `json:"fix"`
}

type PreflightRequest struct {
	Draft      ArticleDraft `json:"draft"`
	Brief      ContentBrief `json:"brief"`
	BrandVoice string       `json:"brand_voice,omitempty"`
}

type PreflightReport struct {
	Issues []PreflightIssue `json:"issues"`
}

// Passed reports whether the draft cleared preflight with no findings.
func (r *PreflightReport) Passed() bool {
	return r != nil && len(r.Issues) == 0
}

func (r *PreflightReport) validate() error {
	for i, issue := range r.Issues {
		if strings.TrimSpace(issue.Description) == "" {
			return fmt.Errorf("issue %d missing description", i+1)
		}
	}
	return nil
}

type RewriteRequest struct {
	Draft  ArticleDraft     `json:"draft"`
	Brief  ContentBrief     `json:"brief"`
	Issues []PreflightIssue `json:"issues"`
}

type PublishRequest struct {
	Draft ArticleDraft `json:"draft"`
	Brief ContentBrief `json:"brief"`
}

type PublishKit struct {
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
}

func (k *PublishKit) validate() error {
	if strings.TrimSpace(k.SEOTitle) == "" {
		return fmt.Errorf("seo title empty")
	}
	return nil
}

// IntentKind is the dispatcher's classification of free-form input.
type IntentKind string

const (
	IntentNavigate IntentKind = "navigate"
	IntentRerun    IntentKind = "rerun"
	IntentAnswer   IntentKind = "answer"
)

type ClassifyRequest struct {
	Text        string   `json:"text"`
	CurrentStep int      `json:"current_step"`
	History     []string `json:"history,omitempty"`
}

// Intent is advisory: the orchestrator re-validates navigate targets and
// rerun preconditions before acting on it.
type Intent struct {
	Kind         IntentKind `json:"kind"`
	TargetStep   int        `json:"target_step,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Answer       string     `json:"answer,omitempty"`
}

func (i *Intent) validate() error {
	switch i.Kind {
	case IntentNavigate, IntentRerun, IntentAnswer:
		return nil
	}
	return fmt.Errorf("unknown intent kind %q", i.Kind)
}

type AssetRequest struct {
	Prompt   string `json:"prompt"`
	BaseID   string `json:"base_id,omitempty"`
	BaseData string `json:"base_data,omitempty"`
}

type AssetResult struct {
	Description string `json:"description"`
	Data        string `json:"data"`
}

func (a *AssetResult) validate() error {
	if strings.TrimSpace(a.Data) == "" {
		return fmt.Errorf("asset data empty")
	}
	return nil
}
