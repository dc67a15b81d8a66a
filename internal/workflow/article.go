package workflow

import (
	"context"
	"fmt"

	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/conversation"
)

// execArticle runs step 6: the multi-pass writing pipeline ending in a
// preflight check. Every pass degrades independently so a single failed call
// never loses the draft.
func (o *Orchestrator) execArticle(ctx context.Context, s *Session, instructions string) {
	state := s.State()
	if state.Brief == nil {
		o.agentSay(s, "I need a confirmed brief before writing. Confirm or regenerate the brief first.")
		return
	}
	brief := *state.Brief

	o.toolSay(s, "Researching the topic...")
	research, err := o.backend.ResearchTopic(ctx, backend.ResearchRequest{Brief: brief, Industry: s.Industry})
	if err != nil {
		research = backend.FallbackResearch(brief)
		o.notice(s, "Topic research was unavailable; the draft relies on the brief alone.")
	}

	o.toolSay(s, "Structuring the outline...")
	outline, err := o.backend.OutlineArticle(ctx, backend.OutlineRequest{Brief: brief, Research: research})
	if err != nil {
		outline = backend.FallbackOutline(brief)
	}

	o.toolSay(s, "Writing the first draft (~%d words)...", brief.WordCount)
	draft, err := o.backend.DraftArticle(ctx, backend.DraftRequest{Brief: brief, Outline: outline})
	if err != nil {
		draft = backend.FallbackDraft(brief)
		o.notice(s, "Drafting was unavailable; showing a skeleton article.")
	}

	o.toolSay(s, "Polishing tone and flow...")
	if polished, err := o.backend.PolishArticle(ctx, backend.PolishRequest{Draft: *draft, Brief: brief}); err == nil {
		draft = polished
	}

	o.toolSay(s, "Placing image suggestions...")
	if embedded, err := o.backend.EmbedImages(ctx, backend.EmbedImagesRequest{Draft: *draft}); err == nil {
		draft = embedded
	}

	s.update(func(s *Session) { s.state.Draft = draft })
	o.runPreflight(ctx, s, *draft, brief)
	s.advance(StepArticle)
}

// runPreflight checks the draft, emits the preflight card and supersedes any
// previous one.
func (o *Orchestrator) runPreflight(ctx context.Context, s *Session, draft backend.ArticleDraft, brief backend.ContentBrief) {
	o.toolSay(s, "Running preflight checks...")
	report, err := o.backend.RunPreflight(ctx, backend.PreflightRequest{
		Draft:      draft,
		Brief:      brief,
		BrandVoice: s.profile.BrandVoice,
	})
	if err != nil {
		report = backend.FallbackPreflight()
		o.notice(s, "Preflight could not run; the draft has not been checked.")
	}
	if prev, ok := s.Log.LastOfType(conversation.CardPreflight); ok {
		o.deactivate(s, prev)
	}
	s.update(func(s *Session) { s.state.Preflight = report })
	o.card(s, conversation.CardPreflight, preflightPayload{Draft: draft, Report: *report})
	if report.Passed() {
		o.agentSay(s, "The article passed all preflight checks. Approve it and I'll prepare it for publishing.")
	} else {
		o.agentSay(s, "Preflight found %d issue(s). I can fix them automatically, or you can approve as-is.", len(report.Issues))
	}
}

// AutoFix rewrites the draft to address the current preflight issues and
// re-runs preflight on the result.
func (o *Orchestrator) AutoFix(ctx context.Context, sessionID string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	state := s.State()
	if state.Draft == nil || state.Preflight == nil {
		return s.view(), fmt.Errorf("%w: there is no checked draft to fix", ErrInvalidInput)
	}
	if state.Preflight.Passed() {
		o.agentSay(s, "The draft already passes preflight; nothing to fix.")
		return s.view(), nil
	}
	o.toolSay(s, "Rewriting the draft to address %d issue(s)...", len(state.Preflight.Issues))
	draft, err := o.backend.RewriteForIssues(ctx, backend.RewriteRequest{
		Draft:  *state.Draft,
		Brief:  *state.Brief,
		Issues: state.Preflight.Issues,
	})
	if err != nil {
		draft = state.Draft
		o.notice(s, "The automatic fix was unavailable; the draft is unchanged.")
	}
	s.update(func(s *Session) { s.state.Draft = draft })
	o.runPreflight(ctx, s, *draft, *state.Brief)
	return s.view(), nil
}

// ApproveArticle accepts the current draft and runs the publish step.
func (o *Orchestrator) ApproveArticle(ctx context.Context, sessionID string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	if s.State().Draft == nil {
		return s.view(), fmt.Errorf("%w: there is no draft to approve", ErrInvalidInput)
	}
	if id, ok := s.Log.LastOfType(conversation.CardPreflight); ok {
		o.deactivate(s, id)
	}
	o.agentSay(s, "Article approved. Preparing the publish kit.")
	o.execPublish(ctx, s, "")
	return s.view(), nil
}

// execPublish runs step 7: SEO metadata for the approved draft.
func (o *Orchestrator) execPublish(ctx context.Context, s *Session, instructions string) {
	state := s.State()
	if state.Draft == nil || state.Brief == nil {
		o.agentSay(s, "There is no approved article to publish yet.")
		return
	}
	o.toolSay(s, "Generating SEO title and description...")
	kit, err := o.backend.GeneratePublishKit(ctx, backend.PublishRequest{Draft: *state.Draft, Brief: *state.Brief})
	if err != nil {
		kit = backend.FallbackPublishKit(*state.Draft)
		o.notice(s, "Metadata generation was unavailable; showing defaults derived from the title.")
	}
	if prev, ok := s.Log.LastOfType(conversation.CardPublish); ok {
		o.deactivate(s, prev)
	}
	s.update(func(s *Session) { s.state.Publish = kit })
	o.card(s, conversation.CardPublish, publishPayload{Title: state.Draft.Title, Kit: *kit})
	s.advance(StepPublish)
	o.agentSay(s, "All set. Copy the markdown and metadata into your CMS whenever you're ready.")
}
