package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

func (c *Client) Diagnose(ctx context.Context, req DiagnoseRequest) (*DiagnosisReport, error) {
	system := "You are an SEO site auditor. Score the site 0-100 overall and on four dimensions: " +
		"keyword_fit, topical_authority, intent_coverage, discoverability. Each dimension has a score (0-100) and a summary." + jsonOnly
	user := fmt.Sprintf("Diagnose the SEO health of %s.", req.SiteURL)
	if req.Instructions != "" {
		user += " Additional instructions: " + req.Instructions
	}
	text, err := c.complete(ctx, "diagnose", mediumCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	var report DiagnosisReport
	if err := decodeJSON(text, &report); err != nil {
		return nil, err
	}
	if err := report.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &report, nil
}

func (c *Client) FindCompetitors(ctx context.Context, req CompetitorSearchRequest) ([]CompetitorCandidate, error) {
	system := "You are a market researcher. Return ranked organic-search competitors as " +
		`{"candidates":[{"name","url","rationale","rank"}]}.` + jsonOnly
	user := fmt.Sprintf("Find content competitors for %s in the %s industry.", req.SiteURL, req.Industry)
	if req.Instructions != "" {
		user += " Additional instructions: " + req.Instructions
	}
	text, err := c.complete(ctx, "find_competitors", mediumCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Candidates []CompetitorCandidate `json:"candidates"`
	}
	if err := decodeJSON(text, &wrapper); err != nil {
		return nil, err
	}
	if len(wrapper.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty candidate list", ErrMalformed)
	}
	for i := range wrapper.Candidates {
		if wrapper.Candidates[i].Rank == 0 {
			wrapper.Candidates[i].Rank = i + 1
		}
	}
	return wrapper.Candidates, nil
}

func (c *Client) AnalyzeCompetitor(ctx context.Context, req CompetitorAnalysisRequest) (*CompetitorProfile, error) {
	system := "You are a content analyst. Score the competitor's content quality 0-100 and cite their strongest article as " +
		`{"name","url","quality_score","top_article":{"title","source","url"}}.` + jsonOnly
	user := fmt.Sprintf("Analyze the content of %s (%s) competing in %s.", req.Candidate.Name, req.Candidate.URL, req.Industry)
	if req.Instructions != "" {
		user += " Additional instructions: " + req.Instructions
	}
	text, err := c.complete(ctx, "analyze_competitor", mediumCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	var profile CompetitorProfile
	if err := decodeJSON(text, &profile); err != nil {
		return nil, err
	}
	if err := profile.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if profile.Name == "" {
		profile.Name = req.Candidate.Name
	}
	if profile.URL == "" {
		profile.URL = req.Candidate.URL
	}
	return &profile, nil
}

func (c *Client) SummarizeLandscape(ctx context.Context, req LandscapeRequest) (*LandscapeReport, error) {
	system := "You are a strategy analyst. Summarize the competitive landscape as " +
		`{"trend","disadvantage","opportunity"} given the competitor profiles.` + jsonOnly
	var b strings.Builder
	fmt.Fprintf(&b, "Site: %s. Industry: %s. Competitor profiles:\n", req.SiteURL, req.Industry)
	for _, p := range req.Profiles {
		fmt.Fprintf(&b, "- %s (%s): quality %d/100\n", p.Name, p.URL, p.QualityScore)
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.Instructions)
	}
	text, err := c.complete(ctx, "summarize_landscape", mediumCallTimeout, system, b.String())
	if err != nil {
		return nil, err
	}
	var report LandscapeReport
	if err := decodeJSON(text, &report); err != nil {
		return nil, err
	}
	report.Profiles = req.Profiles
	if err := report.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &report, nil
}

func (c *Client) GenerateSolutions(ctx context.Context, req SolutionRequest) ([]Solution, error) {
	system := "You are a content strategist. Propose exactly 3 named strategies as " +
		`{"solutions":[{"id","name","goal","concept","examples":[2-3 strings],"justification"}]}. ` +
		"Each justification must tie back to the competitive analysis." + jsonOnly
	var b strings.Builder
	fmt.Fprintf(&b, "Site: %s. Industry: %s.\n", req.SiteURL, req.Industry)
	if req.Landscape != nil {
		fmt.Fprintf(&b, "Trend: %s\nDisadvantage: %s\nOpportunity: %s\n", req.Landscape.Trend, req.Landscape.Disadvantage, req.Landscape.Opportunity)
	}
	if req.BrandVoice != "" {
		fmt.Fprintf(&b, "Brand voice: %s\n", req.BrandVoice)
	}
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.Instructions)
	}
	text, err := c.complete(ctx, "generate_solutions", mediumCallTimeout, system, b.String())
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Solutions []Solution `json:"solutions"`
	}
	if err := decodeJSON(text, &wrapper); err != nil {
		return nil, err
	}
	for i := range wrapper.Solutions {
		if wrapper.Solutions[i].ID == "" {
			wrapper.Solutions[i].ID = fmt.Sprintf("sol-%d", i+1)
		}
	}
	if err := validateSolutions(wrapper.Solutions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return wrapper.Solutions, nil
}

func (c *Client) GenerateBrief(ctx context.Context, req BriefRequest) (*ContentBrief, error) {
	system := "You are a content editor. Produce a content brief as " +
		`{"title","keywords":[],"outline":[],"word_count","recommendations":[]}.` + jsonOnly
	var b strings.Builder
	fmt.Fprintf(&b, "Site: %s. Strategy: %s: %s (%s)\n", req.SiteURL, req.Solution.Name, req.Solution.Goal, req.Solution.Concept)
	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(req.Keywords, ", "))
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", req.Instructions)
	}
	text, err := c.complete(ctx, "generate_brief", mediumCallTimeout, system, b.String())
	if err != nil {
		return nil, err
	}
	var brief ContentBrief
	if err := decodeJSON(text, &brief); err != nil {
		return nil, err
	}
	if err := brief.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &brief, nil
}

func (c *Client) ResearchTopic(ctx context.Context, req ResearchRequest) (string, error) {
	system := `You are a research assistant. Summarize current web knowledge on the topic as {"summary"}.` + jsonOnly
	user := fmt.Sprintf("Topic: %s. Industry: %s. Outline: %s.", req.Brief.Title, req.Industry, strings.Join(req.Brief.Outline, "; "))
	text, err := c.complete(ctx, "research_topic", longCallTimeout, system, user)
	if err != nil {
		return "", err
	}
	summary, ok := stringField(text, "summary")
	if !ok {
		return "", fmt.Errorf("%w: missing summary", ErrMalformed)
	}
	return summary, nil
}

func (c *Client) OutlineArticle(ctx context.Context, req OutlineRequest) ([]string, error) {
	system := `You are a content editor. Produce a strategic section outline as {"outline":["..."]}.` + jsonOnly
	user := fmt.Sprintf("Title: %s. Research summary: %s", req.Brief.Title, req.Research)
	text, err := c.complete(ctx, "outline_article", mediumCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Outline []string `json:"outline"`
	}
	if err := decodeJSON(text, &wrapper); err != nil {
		return nil, err
	}
	if len(wrapper.Outline) == 0 {
		return nil, fmt.Errorf("%w: empty outline", ErrMalformed)
	}
	return wrapper.Outline, nil
}

func (c *Client) DraftArticle(ctx context.Context, req DraftRequest) (*ArticleDraft, error) {
	system := `You are a long-form writer. Write the full article in markdown as {"title","markdown"}. ` +
		fmt.Sprintf("Target length about %d words.", req.Brief.WordCount) + jsonOnly
	user := fmt.Sprintf("Title: %s. Keywords: %s. Sections: %s.",
		req.Brief.Title, strings.Join(req.Brief.Keywords, ", "), strings.Join(req.Outline, "; "))
	text, err := c.complete(ctx, "draft_article", longCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	return decodeDraft(text)
}

func (c *Client) PolishArticle(ctx context.Context, req PolishRequest) (*ArticleDraft, error) {
	system := `You are a copy editor. Improve readability without changing meaning. Return {"title","markdown"}.` + jsonOnly
	text, err := c.complete(ctx, "polish_article", longCallTimeout, system, req.Draft.Markdown)
	if err != nil {
		return nil, err
	}
	return decodeDraft(text)
}

func (c *Client) EmbedImages(ctx context.Context, req EmbedImagesRequest) (*ArticleDraft, error) {
	system := "You are a content editor. Insert 2-3 descriptive image placeholders " +
		`(markdown image syntax with alt text) where they support the article. Return {"title","markdown"}.` + jsonOnly
	text, err := c.complete(ctx, "embed_images", mediumCallTimeout, system, req.Draft.Markdown)
	if err != nil {
		return nil, err
	}
	return decodeDraft(text)
}

func decodeDraft(text string) (*ArticleDraft, error) {
	var draft ArticleDraft
	if err := decodeJSON(text, &draft); err != nil {
		return nil, err
	}
	if err := draft.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &draft, nil
}

func (c *Client) RunPreflight(ctx context.Context, req PreflightRequest) (*PreflightReport, error) {
	system := "You are an SEO reviewer. Check keyword usage, structural SEO, brand-voice consistency and readability. " +
		`Return {"issues":[{"kind","description","fix"}]} where kind is one of keyword_usage, structure, brand_voice, readability. ` +
		"Return an empty issues array when the draft passes." + jsonOnly
	var b strings.Builder
	fmt.Fprintf(&b, "Keywords: %s.\n", strings.Join(req.Brief.Keywords, ", "))
	if req.BrandVoice != "" {
		fmt.Fprintf(&b, "Brand voice: %s.\n", req.BrandVoice)
	}
	b.WriteString(req.Draft.Markdown)
	text, err := c.complete(ctx, "run_preflight", mediumCallTimeout, system, b.String())
	if err != nil {
		return nil, err
	}
	var report PreflightReport
	if err := decodeJSON(text, &report); err != nil {
		return nil, err
	}
	if err := report.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &report, nil
}

func (c *Client) RewriteForIssues(ctx context.Context, req RewriteRequest) (*ArticleDraft, error) {
	system := `You are a copy editor. Rewrite the article to resolve every listed issue. Return {"title","markdown"}.` + jsonOnly
	var b strings.Builder
	b.WriteString("Issues to resolve:\n")
	for _, issue := range req.Issues {
		fmt.Fprintf(&b, "- [%s] %s (fix: %s)\n", issue.Kind, issue.Description, issue.Fix)
	}
	b.WriteString("\nArticle:\n")
	b.WriteString(req.Draft.Markdown)
	text, err := c.complete(ctx, "rewrite_for_issues", longCallTimeout, system, b.String())
	if err != nil {
		return nil, err
	}
	return decodeDraft(text)
}

func (c *Client) GeneratePublishKit(ctx context.Context, req PublishRequest) (*PublishKit, error) {
	system := `You are an SEO copywriter. Produce {"seo_title","seo_description"} for the article. ` +
		"Title under 60 characters, description under 160." + jsonOnly
	user := fmt.Sprintf("Title: %s.\n%s", req.Draft.Title, req.Draft.Markdown)
	text, err := c.complete(ctx, "generate_publish_kit", shortCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	var kit PublishKit
	if err := decodeJSON(text, &kit); err != nil {
		return nil, err
	}
	if err := kit.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &kit, nil
}

func (c *Client) Classify(ctx context.Context, req ClassifyRequest) (*Intent, error) {
	system := "You route free-form input inside a 7-step SEO workflow " +
		"(1 diagnosis, 2 competitors, 3 analysis, 4 solution, 5 brief, 6 article, 7 publish). " +
		`Return exactly one of {"navigate":<step>}, {"rerun":"<instructions>"} or {"answer":"<reply>"}.` + jsonOnly
	var b strings.Builder
	fmt.Fprintf(&b, "Current step: %d.\n", req.CurrentStep)
	if len(req.History) > 0 {
		fmt.Fprintf(&b, "Recent conversation:\n%s\n", strings.Join(req.History, "\n"))
	}
	fmt.Fprintf(&b, "User input: %s", req.Text)
	text, err := c.complete(ctx, "classify", shortCallTimeout, system, b.String())
	if err != nil {
		return nil, err
	}
	return parseIntent(text)
}

// parseIntent accepts both the compact wire shapes ({"navigate":2}) and the
// expanded form ({"kind":"navigate","target_step":2}).
func parseIntent(text string) (*Intent, error) {
	payload, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON payload in response", ErrMalformed)
	}
	if nav := gjson.Get(payload, "navigate"); nav.Exists() {
		return &Intent{Kind: IntentNavigate, TargetStep: int(nav.Int())}, nil
	}
	if rerun := gjson.Get(payload, "rerun"); rerun.Exists() {
		return &Intent{Kind: IntentRerun, Instructions: rerun.String()}, nil
	}
	if answer := gjson.Get(payload, "answer"); answer.Exists() {
		return &Intent{Kind: IntentAnswer, Answer: answer.String()}, nil
	}
	var intent Intent
	if err := decodeJSON(payload, &intent); err != nil {
		return nil, err
	}
	if err := intent.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &intent, nil
}

func (c *Client) GenerateImage(ctx context.Context, req AssetRequest) (*AssetResult, error) {
	return c.generateAsset(ctx, "generate_image", "image", req)
}

func (c *Client) GenerateVideo(ctx context.Context, req AssetRequest) (*AssetResult, error) {
	return c.generateAsset(ctx, "generate_video", "video", req)
}

func (c *Client) generateAsset(ctx context.Context, task, kind string, req AssetRequest) (*AssetResult, error) {
	system := fmt.Sprintf("You are a creative director. Produce a detailed %s generation brief as "+
		`{"description","data"} where data is a render directive for the %s pipeline.`, kind, kind) + jsonOnly
	user := req.Prompt
	if req.BaseData != "" {
		user = fmt.Sprintf("Edit the existing asset (%s) per: %s", req.BaseData, req.Prompt)
	}
	text, err := c.complete(ctx, task, longCallTimeout, system, user)
	if err != nil {
		return nil, err
	}
	var result AssetResult
	if err := decodeJSON(text, &result); err != nil {
		return nil, err
	}
	if err := result.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &result, nil
}
