package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/conversation"
	"github.com/seoforge/seoforge/internal/profile"
)

// Card payload envelopes. Cards carry the full step result so the transcript
// alone can render the workspace.
type competitorsPayload struct {
	Candidates []backend.CompetitorCandidate `json:"candidates"`
}

type solutionsPayload struct {
	Solutions []backend.Solution `json:"solutions"`
}

type preflightPayload struct {
	Draft  backend.ArticleDraft    `json:"draft"`
	Report backend.PreflightReport `json:"report"`
}

type publishPayload struct {
	Title string             `json:"title"`
	Kit   backend.PublishKit `json:"kit"`
}

// StartSession registers a new session for siteURL and synchronously runs
// the diagnosis step, which chains into competitor discovery.
func (o *Orchestrator) StartSession(ctx context.Context, siteURL, industry, instructions string) (View, error) {
	normalized, err := normalizeURL(siteURL)
	if err != nil {
		return View{}, err
	}
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		SiteURL:   normalized,
		SiteKey:   profile.SiteKey(normalized),
		Industry:  strings.TrimSpace(industry),
		Log:       conversation.NewLog(),
		busy:      true,
		createdAt: now,
		updatedAt: now,
	}
	o.mu.Lock()
	o.sessions[s.ID] = s
	o.mu.Unlock()
	common.Logger().Info("workflow: session started", "session", s.ID, "site", s.SiteKey)

	defer func() {
		s.update(func(s *Session) { s.busy = false })
		o.persist(s)
	}()

	s.update(func(s *Session) { s.profile = o.loadProfile(ctx, s) })
	if s.Industry == "" {
		s.update(func(s *Session) { s.Industry = s.profile.Industry })
	} else if s.profile.Industry != s.Industry {
		s.update(func(s *Session) { s.profile.Industry = s.Industry })
		o.saveProfile(ctx, s.profile)
	}

	o.agentSay(s, "Welcome! I'll start by diagnosing the SEO health of %s.", s.SiteURL)
	o.execDiagnosis(ctx, s, instructions)
	return s.view(), nil
}

// ResetSession wipes the session's transcript and project state and starts
// the workflow over from diagnosis. This is the only operation that empties
// the deactivated set.
func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()
	common.Logger().Info("workflow: session reset", "session", s.ID)
	s.Log.Reset()
	s.update(func(s *Session) {
		s.state = ProjectState{}
		s.notices = nil
		s.currentStep = 0
		s.persisted = 0
	})
	if o.store != nil {
		if err := o.store.MarkReset(context.Background(), s.ID); err != nil {
			common.Logger().Warn("workflow: reset persist failed", "session", s.ID, "error", err)
		}
	}
	o.agentSay(s, "Starting over. I'll run a fresh diagnosis of %s.", s.SiteURL)
	o.execDiagnosis(ctx, s, "")
	return s.view(), nil
}

// execDiagnosis runs step 1 and always chains into competitor discovery.
func (o *Orchestrator) execDiagnosis(ctx context.Context, s *Session, instructions string) {
	o.toolSay(s, "Crawling %s and scoring keyword fit, topical authority, intent coverage and discoverability...", s.SiteURL)
	report, err := o.backend.Diagnose(ctx, backend.DiagnoseRequest{SiteURL: s.SiteURL, Instructions: instructions})
	if err != nil {
		report = backend.FallbackDiagnosis(s.SiteURL)
		o.notice(s, "Diagnosis could not be completed automatically; showing a placeholder score.")
	}
	s.update(func(s *Session) { s.state.Diagnosis = report })
	o.card(s, conversation.CardDiagnosis, report)
	s.advance(StepDiagnosis)
	o.agentSay(s, "Your site scored %d/100. Next, let's look at who you're competing with.", report.Score)
	o.execCompetitors(ctx, s, "")
}

// execCompetitors runs step 2. Any previous competitors card is superseded.
func (o *Orchestrator) execCompetitors(ctx context.Context, s *Session, instructions string) {
	o.toolSay(s, "Searching for content competitors...")
	candidates, err := o.backend.FindCompetitors(ctx, backend.CompetitorSearchRequest{
		SiteURL:      s.SiteURL,
		Industry:     s.Industry,
		Instructions: instructions,
	})
	if err != nil {
		candidates = backend.FallbackCompetitors(s.Industry)
		o.notice(s, "Competitor discovery was unavailable; add competitors manually to continue.")
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	if prev, ok := s.Log.LastOfType(conversation.CardCompetitors); ok {
		o.deactivate(s, prev)
	}
	s.update(func(s *Session) { s.state.Candidates = candidates })
	o.card(s, conversation.CardCompetitors, competitorsPayload{Candidates: candidates})
	s.advance(StepCompetitors)
	o.agentSay(s, "I found %d candidate competitors. Pick one to three of them, or add your own, and I'll analyze the landscape.", len(candidates))
}

// ConfirmCompetitors accepts the user's pick of one to three candidates,
// identified by name or URL, and runs the analysis chain.
func (o *Orchestrator) ConfirmCompetitors(ctx context.Context, sessionID string, picks []string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if s.CurrentStep() < StepCompetitors {
		return s.view(), fmt.Errorf("%w: competitor candidates are not ready yet", ErrInvalidInput)
	}
	if len(picks) < 1 || len(picks) > 3 {
		return s.view(), fmt.Errorf("%w: pick between 1 and 3 competitors, got %d", ErrInvalidInput, len(picks))
	}
	candidates := s.State().Candidates
	confirmed := make([]backend.CompetitorCandidate, 0, len(picks))
	for _, pick := range picks {
		match, ok := findCandidate(candidates, pick)
		if !ok {
			return s.view(), fmt.Errorf("%w: %q is not among the candidates", ErrInvalidInput, pick)
		}
		confirmed = append(confirmed, match)
	}
	if id, ok := s.Log.LastOfType(conversation.CardCompetitors); ok {
		o.deactivate(s, id)
	}
	s.update(func(s *Session) { s.state.Confirmed = confirmed })
	o.agentSay(s, "Got it. Analyzing %d competitor(s) in depth.", len(confirmed))
	o.execAnalysis(ctx, s, "")
	return s.view(), nil
}

// AddManualCompetitor appends a user-supplied competitor to the candidate
// list and replaces the competitors card with a merged one.
func (o *Orchestrator) AddManualCompetitor(ctx context.Context, sessionID, name, url string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if s.CurrentStep() < StepCompetitors {
		return s.view(), fmt.Errorf("%w: competitor candidates are not ready yet", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" && url == "" {
		return s.view(), fmt.Errorf("%w: a competitor needs a name or a url", ErrInvalidInput)
	}
	if name == "" {
		name = url
	}
	var merged []backend.CompetitorCandidate
	s.update(func(s *Session) {
		s.state.Candidates = append(s.state.Candidates, backend.CompetitorCandidate{
			Name:     name,
			URL:      url,
			Rank:     len(s.state.Candidates) + 1,
			IsManual: true,
		})
		merged = append([]backend.CompetitorCandidate(nil), s.state.Candidates...)
	})
	if id, ok := s.Log.LastOfType(conversation.CardCompetitors); ok {
		o.deactivate(s, id)
	}
	o.card(s, conversation.CardCompetitors, competitorsPayload{Candidates: merged})
	o.agentSay(s, "Added %s to the candidate list.", name)
	return s.view(), nil
}

// execAnalysis runs step 3: per-competitor deep dives in parallel, then the
// aggregate landscape summary. It chains into solution generation.
func (o *Orchestrator) execAnalysis(ctx context.Context, s *Session, instructions string) {
	confirmed := s.State().Confirmed
	if len(confirmed) == 0 {
		o.agentSay(s, "I need confirmed competitors before I can analyze the landscape. Pick some from the list above.")
		return
	}
	o.toolSay(s, "Reading competitor content and scoring quality...")
	profiles := make([]backend.CompetitorProfile, len(confirmed))
	eg, gctx := errgroup.WithContext(ctx)
	for i, candidate := range confirmed {
		i, candidate := i, candidate
		eg.Go(func() error {
			p, err := o.backend.AnalyzeCompetitor(gctx, backend.CompetitorAnalysisRequest{
				Candidate:    candidate,
				Industry:     s.Industry,
				Instructions: instructions,
			})
			if err != nil {
				p = backend.FallbackCompetitorProfile(candidate)
			}
			profiles[i] = *p
			return nil
		})
	}
	_ = eg.Wait()

	o.toolSay(s, "Summarizing the competitive landscape...")
	report, err := o.backend.SummarizeLandscape(ctx, backend.LandscapeRequest{
		SiteURL:      s.SiteURL,
		Industry:     s.Industry,
		Profiles:     profiles,
		Instructions: instructions,
	})
	if err != nil {
		report = backend.FallbackLandscape(profiles)
		o.notice(s, "Landscape summarization was unavailable; showing a placeholder narrative.")
	}
	report.Profiles = profiles
	report.Citations = append(report.Citations, o.citations(s)...)
	s.update(func(s *Session) { s.state.Analysis = report })
	o.card(s, conversation.CardAnalysis, report)
	s.advance(StepAnalysis)
	o.agentSay(s, "Here's how the landscape looks. Based on it, I'll propose three content strategies.")
	o.execSolutions(ctx, s, "")
}

// citations pulls supporting guidance from the bundled knowledge base.
func (o *Orchestrator) citations(s *Session) []backend.Citation {
	if o.know == nil {
		return nil
	}
	query := s.Industry
	if kws := s.profile.TargetKeywords; len(kws) > 0 {
		query += " " + strings.Join(kws, " ")
	}
	entries := o.know.Lookup(query, 3)
	out := make([]backend.Citation, 0, len(entries))
	for _, e := range entries {
		out = append(out, backend.Citation{Title: e.Title, Source: e.Source})
	}
	return out
}

// execSolutions runs step 4: exactly three strategy proposals.
func (o *Orchestrator) execSolutions(ctx context.Context, s *Session, instructions string) {
	state := s.State()
	if state.Analysis == nil {
		o.agentSay(s, "I need the competitor analysis before proposing strategies. Run the analysis step first.")
		return
	}
	o.toolSay(s, "Drafting content strategy proposals...")
	solutions, err := o.backend.GenerateSolutions(ctx, backend.SolutionRequest{
		SiteURL:      s.SiteURL,
		Industry:     s.Industry,
		Landscape:    state.Analysis,
		BrandVoice:   s.profile.BrandVoice,
		Keywords:     s.profile.TargetKeywords,
		Instructions: instructions,
	})
	if err != nil {
		solutions = backend.FallbackSolutions()
		o.notice(s, "Strategy generation was unavailable; showing default strategies.")
	}
	s.update(func(s *Session) { s.state.Solutions = solutions })
	o.card(s, conversation.CardSolutions, solutionsPayload{Solutions: solutions})
	s.advance(StepSolution)
	o.agentSay(s, "Pick the strategy that fits best and I'll turn it into a content brief.")
}

// SelectSolution records the user's strategy choice and runs the brief step.
func (o *Orchestrator) SelectSolution(ctx context.Context, sessionID, solutionID string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if s.CurrentStep() < StepSolution {
		return s.view(), fmt.Errorf("%w: strategies are not ready yet", ErrInvalidInput)
	}
	var chosen *backend.Solution
	for _, sol := range s.State().Solutions {
		if sol.ID == solutionID || strings.EqualFold(sol.Name, solutionID) {
			chosen = &sol
			break
		}
	}
	if chosen == nil {
		return s.view(), fmt.Errorf("%w: unknown solution %q", ErrInvalidInput, solutionID)
	}
	if id, ok := s.Log.LastOfType(conversation.CardSolutions); ok {
		o.deactivate(s, id)
	}
	s.update(func(s *Session) {
		s.state.Solution = chosen
		s.profile.LastSolution = chosen.Name
	})
	o.saveProfile(ctx, s.profile)
	o.agentSay(s, "%s it is. Building the content brief.", chosen.Name)
	o.execBrief(ctx, s, "")
	return s.view(), nil
}

// execBrief runs step 5 and records the brief's keywords on the brand
// profile.
func (o *Orchestrator) execBrief(ctx context.Context, s *Session, instructions string) {
	state := s.State()
	if state.Solution == nil {
		o.agentSay(s, "Choose a strategy first and I'll draft the brief from it.")
		return
	}
	o.toolSay(s, "Assembling the content brief...")
	brief, err := o.backend.GenerateBrief(ctx, backend.BriefRequest{
		SiteURL:      s.SiteURL,
		Solution:     *state.Solution,
		Keywords:     s.profile.TargetKeywords,
		Instructions: instructions,
	})
	if err != nil {
		brief = backend.FallbackBrief(*state.Solution)
		o.notice(s, "Brief generation was unavailable; showing a default outline.")
	}
	s.update(func(s *Session) {
		s.state.Brief = brief
		s.profile.AppendKeywords(brief.Keywords...)
	})
	o.saveProfile(ctx, s.profile)
	o.card(s, conversation.CardBrief, brief)
	s.advance(StepBrief)
	o.agentSay(s, "Review the brief. Edit anything you like, then confirm it and I'll write the article.")
}

// ConfirmBrief accepts the (possibly edited) brief and runs the article
// pipeline. A nil edit confirms the brief as generated.
func (o *Orchestrator) ConfirmBrief(ctx context.Context, sessionID string, edited *backend.ContentBrief) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if s.CurrentStep() < StepBrief || s.State().Brief == nil {
		return s.view(), fmt.Errorf("%w: there is no brief to confirm yet", ErrInvalidInput)
	}
	if edited != nil {
		if strings.TrimSpace(edited.Title) == "" || len(edited.Outline) == 0 {
			return s.view(), fmt.Errorf("%w: an edited brief needs a title and outline", ErrInvalidInput)
		}
		if edited.WordCount <= 0 {
			edited.WordCount = s.State().Brief.WordCount
		}
		s.update(func(s *Session) {
			s.state.Brief = edited
			s.profile.AppendKeywords(edited.Keywords...)
		})
		o.saveProfile(ctx, s.profile)
	}
	if id, ok := s.Log.LastOfType(conversation.CardBrief); ok {
		o.deactivate(s, id)
	}
	o.agentSay(s, "Brief confirmed. Writing the article now; this takes a few passes.")
	o.execArticle(ctx, s, "")
	return s.view(), nil
}

func findCandidate(candidates []backend.CompetitorCandidate, pick string) (backend.CompetitorCandidate, bool) {
	pick = strings.TrimSpace(pick)
	for _, c := range candidates {
		if strings.EqualFold(c.Name, pick) || strings.EqualFold(c.URL, pick) {
			return c, true
		}
	}
	return backend.CompetitorCandidate{}, false
}
