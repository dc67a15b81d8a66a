package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/conversation"
	"github.com/seoforge/seoforge/internal/knowledge"
	"github.com/seoforge/seoforge/internal/profile"
)

// mockBackend is a controllable Backend: failAll forces every call to error,
// briefGate blocks GenerateBrief until closed, preflightIssues is consumed
// one call at a time (empty queue means a clean pass).
type mockBackend struct {
	mu              sync.Mutex
	failAll         bool
	briefGate       chan struct{}
	preflightIssues [][]backend.PreflightIssue
	classify        func(backend.ClassifyRequest) (*backend.Intent, error)
	calls           map[string]int
}

func newMockBackend() *mockBackend {
	return &mockBackend{calls: map[string]int{}}
}

func (m *mockBackend) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	if m.failAll {
		return errors.New("backend down")
	}
	return nil
}

func (m *mockBackend) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockBackend) Diagnose(ctx context.Context, req backend.DiagnoseRequest) (*backend.DiagnosisReport, error) {
	if err := m.record("diagnose"); err != nil {
		return nil, err
	}
	sub := backend.SubAnalysis{Score: 68, Summary: "ok"}
	return &backend.DiagnosisReport{Score: 68, KeywordFit: sub, TopicalAuth: sub, IntentCoverage: sub, Discoverability: sub}, nil
}

func (m *mockBackend) FindCompetitors(ctx context.Context, req backend.CompetitorSearchRequest) ([]backend.CompetitorCandidate, error) {
	if err := m.record("competitors"); err != nil {
		return nil, err
	}
	return []backend.CompetitorCandidate{
		{Name: "Acme Blog", URL: "https://acme.example"},
		{Name: "Rival Daily", URL: "https://rival.example"},
		{Name: "Benchmark Co", URL: "https://benchmark.example"},
	}, nil
}

func (m *mockBackend) AnalyzeCompetitor(ctx context.Context, req backend.CompetitorAnalysisRequest) (*backend.CompetitorProfile, error) {
	if err := m.record("analyze"); err != nil {
		return nil, err
	}
	return &backend.CompetitorProfile{Name: req.Candidate.Name, URL: req.Candidate.URL, QualityScore: 72}, nil
}

func (m *mockBackend) SummarizeLandscape(ctx context.Context, req backend.LandscapeRequest) (*backend.LandscapeReport, error) {
	if err := m.record("landscape"); err != nil {
		return nil, err
	}
	return &backend.LandscapeReport{
		Trend:        "long-form guides dominate",
		Disadvantage: "thin topical coverage",
		Opportunity:  "own the comparison queries",
	}, nil
}

func (m *mockBackend) GenerateSolutions(ctx context.Context, req backend.SolutionRequest) ([]backend.Solution, error) {
	if err := m.record("solutions"); err != nil {
		return nil, err
	}
	mk := func(id, name string) backend.Solution {
		return backend.Solution{
			ID: id, Name: name, Goal: "grow", Concept: "publish",
			Examples:      []string{"example a", "example b"},
			Justification: "fits the gap",
		}
	}
	return []backend.Solution{mk("sol-1", "Pillar Hub"), mk("sol-2", "Comparison Series"), mk("sol-3", "Expert Column")}, nil
}

func (m *mockBackend) GenerateBrief(ctx context.Context, req backend.BriefRequest) (*backend.ContentBrief, error) {
	m.mu.Lock()
	gate := m.briefGate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err := m.record("brief"); err != nil {
		return nil, err
	}
	return &backend.ContentBrief{
		Title:     "X vs Y: an honest comparison",
		Keywords:  []string{"x vs y", "alternatives"},
		Outline:   []string{"Intro", "Criteria", "Verdict"},
		WordCount: 1500,
	}, nil
}

func (m *mockBackend) ResearchTopic(ctx context.Context, req backend.ResearchRequest) (string, error) {
	if err := m.record("research"); err != nil {
		return "", err
	}
	return "notes", nil
}

func (m *mockBackend) OutlineArticle(ctx context.Context, req backend.OutlineRequest) ([]string, error) {
	if err := m.record("outline"); err != nil {
		return nil, err
	}
	return req.Brief.Outline, nil
}

func (m *mockBackend) DraftArticle(ctx context.Context, req backend.DraftRequest) (*backend.ArticleDraft, error) {
	if err := m.record("draft"); err != nil {
		return nil, err
	}
	return &backend.ArticleDraft{Title: req.Brief.Title, Markdown: "# draft\n\nbody"}, nil
}

func (m *mockBackend) PolishArticle(ctx context.Context, req backend.PolishRequest) (*backend.ArticleDraft, error) {
	if err := m.record("polish"); err != nil {
		return nil, err
	}
	d := req.Draft
	d.Markdown += "\n\npolished"
	return &d, nil
}

func (m *mockBackend) EmbedImages(ctx context.Context, req backend.EmbedImagesRequest) (*backend.ArticleDraft, error) {
	if err := m.record("embed"); err != nil {
		return nil, err
	}
	return &req.Draft, nil
}

func (m *mockBackend) RunPreflight(ctx context.Context, req backend.PreflightRequest) (*backend.PreflightReport, error) {
	if err := m.record("preflight"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.preflightIssues) == 0 {
		return &backend.PreflightReport{}, nil
	}
	issues := m.preflightIssues[0]
	m.preflightIssues = m.preflightIssues[1:]
	return &backend.PreflightReport{Issues: issues}, nil
}

func (m *mockBackend) RewriteForIssues(ctx context.Context, req backend.RewriteRequest) (*backend.ArticleDraft, error) {
	if err := m.record("rewrite"); err != nil {
		return nil, err
	}
	d := req.Draft
	d.Markdown += "\n\nfixed"
	return &d, nil
}

func (m *mockBackend) GeneratePublishKit(ctx context.Context, req backend.PublishRequest) (*backend.PublishKit, error) {
	if err := m.record("publish"); err != nil {
		return nil, err
	}
	return &backend.PublishKit{SEOTitle: req.Draft.Title, SEODescription: "meta"}, nil
}

func (m *mockBackend) Classify(ctx context.Context, req backend.ClassifyRequest) (*backend.Intent, error) {
	if err := m.record("classify"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	fn := m.classify
	m.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &backend.Intent{Kind: backend.IntentAnswer, Answer: "noted"}, nil
}

func (m *mockBackend) GenerateImage(ctx context.Context, req backend.AssetRequest) (*backend.AssetResult, error) {
	if err := m.record("image"); err != nil {
		return nil, err
	}
	return &backend.AssetResult{Description: "img", Data: "data:image/png;base64,xyz"}, nil
}

func (m *mockBackend) GenerateVideo(ctx context.Context, req backend.AssetRequest) (*backend.AssetResult, error) {
	if err := m.record("video"); err != nil {
		return nil, err
	}
	return &backend.AssetResult{Description: "vid", Data: "data:video/mp4;base64,xyz"}, nil
}

func newTestOrchestrator(m *mockBackend) (*Orchestrator, *profile.MemoryStore) {
	profiles := profile.NewMemoryStore()
	return NewOrchestrator(m, profiles, knowledge.NewDefaultBase(), nil), profiles
}

func startSession(t *testing.T, o *Orchestrator) View {
	t.Helper()
	view, err := o.StartSession(context.Background(), "www.example.com/pricing", "analytics software", "")
	require.NoError(t, err)
	return view
}

// driveToSolutions walks a fresh session through competitor confirmation so
// it lands on step 4.
func driveToSolutions(t *testing.T, o *Orchestrator, id string) View {
	t.Helper()
	view, err := o.ConfirmCompetitors(context.Background(), id, []string{"Acme Blog", "Rival Daily"})
	require.NoError(t, err)
	require.Equal(t, StepSolution, view.CurrentStep)
	return view
}

func driveToBrief(t *testing.T, o *Orchestrator, id string) View {
	t.Helper()
	driveToSolutions(t, o, id)
	view, err := o.SelectSolution(context.Background(), id, "sol-2")
	require.NoError(t, err)
	require.Equal(t, StepBrief, view.CurrentStep)
	return view
}

func activeCards(t *testing.T, o *Orchestrator, id string, typ conversation.MessageType) []conversation.Message {
	t.Helper()
	msgs, err := o.Messages(id)
	require.NoError(t, err)
	var out []conversation.Message
	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

// agentTexts decodes the text of every agent turn in msgs.
func agentTexts(t *testing.T, msgs []conversation.Message) []string {
	t.Helper()
	var out []string
	for _, m := range msgs {
		if m.Type != conversation.TypeAgent {
			continue
		}
		var payload conversation.TextPayload
		require.NoError(t, json.Unmarshal(m.Payload, &payload))
		out = append(out, payload.Text)
	}
	return out
}

func TestStartSessionChainsIntoCompetitors(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)

	require.Equal(t, StepCompetitors, view.CurrentStep)
	require.NotNil(t, view.State.Diagnosis)
	require.Equal(t, 68, view.State.Diagnosis.Score)
	require.Len(t, view.State.Candidates, 3)
	require.Equal(t, "example.com", profile.SiteKey(view.SiteURL))

	require.Len(t, activeCards(t, o, view.ID, conversation.CardDiagnosis), 1)
	require.Len(t, activeCards(t, o, view.ID, conversation.CardCompetitors), 1)
}

func TestMessageIDsAreMonotonic(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)

	msgs, _, err := o.Transcript(view.ID)
	require.NoError(t, err)
	require.Greater(t, len(msgs), 5)
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	require.True(t, sort.StringsAreSorted(ids), "message ids must sort in append order")
}

func TestConfirmCompetitorsRunsAnalysisAndSolutions(t *testing.T) {
	m := newMockBackend()
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)

	after := driveToSolutions(t, o, view.ID)
	require.NotNil(t, after.State.Analysis)
	require.Len(t, after.State.Analysis.Profiles, 2)
	require.Len(t, after.State.Solutions, 3)
	require.Equal(t, 2, m.callCount("analyze"))

	// the consumed competitors card is superseded
	require.Empty(t, activeCards(t, o, view.ID, conversation.CardCompetitors))
	require.Len(t, activeCards(t, o, view.ID, conversation.CardAnalysis), 1)
	require.Len(t, activeCards(t, o, view.ID, conversation.CardSolutions), 1)
}

func TestConfirmCompetitorsValidatesPickCount(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)

	_, err := o.ConfirmCompetitors(context.Background(), view.ID, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = o.ConfirmCompetitors(context.Background(), view.ID, []string{"a", "b", "c", "d"})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = o.ConfirmCompetitors(context.Background(), view.ID, []string{"Nobody Inc"})
	require.ErrorIs(t, err, ErrInvalidInput)

	current, err := o.SessionView(view.ID)
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, current.CurrentStep)
}

func TestAddManualCompetitorReplacesCard(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)

	after, err := o.AddManualCompetitor(context.Background(), view.ID, "Dark Horse", "https://darkhorse.example")
	require.NoError(t, err)
	require.Len(t, after.State.Candidates, 4)
	added := after.State.Candidates[3]
	require.True(t, added.IsManual)
	require.Equal(t, 4, added.Rank)

	cards := activeCards(t, o, view.ID, conversation.CardCompetitors)
	require.Len(t, cards, 1, "old competitors card must be superseded by the merged one")

	_, err = o.ConfirmCompetitors(context.Background(), view.ID, []string{"Dark Horse"})
	require.NoError(t, err)
}

func TestSelectSolutionBuildsBriefAndUpdatesProfile(t *testing.T) {
	o, profiles := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	after := driveToBrief(t, o, view.ID)

	require.NotNil(t, after.State.Solution)
	require.Equal(t, "sol-2", after.State.Solution.ID)
	require.NotNil(t, after.State.Brief)
	require.Empty(t, activeCards(t, o, view.ID, conversation.CardSolutions))
	require.Len(t, activeCards(t, o, view.ID, conversation.CardBrief), 1)

	stored, err := profiles.Get(context.Background(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Comparison Series", stored.LastSolution)
	require.Contains(t, stored.KeywordHistory, "x vs y")
}

func TestArticlePipelineAndAutoFix(t *testing.T) {
	m := newMockBackend()
	m.preflightIssues = [][]backend.PreflightIssue{
		{{Kind: backend.IssueKeywordUsage, Description: "keyword missing from intro", Fix: "mention it early"}},
	}
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)

	after, err := o.ConfirmBrief(context.Background(), view.ID, nil)
	require.NoError(t, err)
	require.Equal(t, StepArticle, after.CurrentStep)
	require.NotNil(t, after.State.Draft)
	require.NotNil(t, after.State.Preflight)
	require.Len(t, after.State.Preflight.Issues, 1)

	fixed, err := o.AutoFix(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, fixed.State.Preflight.Passed())
	require.Contains(t, fixed.State.Draft.Markdown, "fixed")
	require.Equal(t, 2, m.callCount("preflight"))
	require.Len(t, activeCards(t, o, view.ID, conversation.CardPreflight), 1, "only the latest preflight card stays active")
}

func TestEditedBriefIsUsedForDrafting(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)

	edited := &backend.ContentBrief{
		Title:    "A different angle",
		Keywords: []string{"fresh keyword"},
		Outline:  []string{"Hook", "Proof", "Close"},
	}
	after, err := o.ConfirmBrief(context.Background(), view.ID, edited)
	require.NoError(t, err)
	require.Equal(t, "A different angle", after.State.Brief.Title)
	require.Equal(t, 1500, after.State.Brief.WordCount, "missing word count falls back to the generated brief's")
	require.Equal(t, "A different angle", after.State.Draft.Title)
}

func TestApproveArticleGeneratesPublishKit(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)
	_, err := o.ConfirmBrief(context.Background(), view.ID, nil)
	require.NoError(t, err)

	after, err := o.ApproveArticle(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, StepPublish, after.CurrentStep)
	require.NotNil(t, after.State.Publish)
	require.Equal(t, "X vs Y: an honest comparison", after.State.Publish.SEOTitle)
	require.Len(t, activeCards(t, o, view.ID, conversation.CardPublish), 1)
}

func TestRewindClearsDownstreamStateAndCards(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)

	after, err := o.GoToStep(context.Background(), view.ID, StepCompetitors)
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep)

	require.NotNil(t, after.State.Diagnosis, "upstream state survives a rewind")
	require.Nil(t, after.State.Candidates)
	require.Nil(t, after.State.Confirmed)
	require.Nil(t, after.State.Analysis)
	require.Nil(t, after.State.Solutions)
	require.Nil(t, after.State.Solution)
	require.Nil(t, after.State.Brief)

	require.Empty(t, activeCards(t, o, view.ID, conversation.CardCompetitors))
	require.Empty(t, activeCards(t, o, view.ID, conversation.CardAnalysis))
	require.Empty(t, activeCards(t, o, view.ID, conversation.CardSolutions))
	require.Empty(t, activeCards(t, o, view.ID, conversation.CardBrief))
	require.Len(t, activeCards(t, o, view.ID, conversation.CardDiagnosis), 1)

	// a rerun at the rewound step regenerates its card without advancing
	after, err = o.Rerun(context.Background(), view.ID, "")
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep)
	require.Len(t, activeCards(t, o, view.ID, conversation.CardCompetitors), 1)
	require.Len(t, after.State.Candidates, 3)
}

func TestRewindLandsExactlyOnTarget(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)

	after, err := o.GoToStep(context.Background(), view.ID, StepAnalysis)
	require.NoError(t, err)
	require.Equal(t, StepAnalysis, after.CurrentStep, "a rewind never chains past its target")
	require.Nil(t, after.State.Analysis)
	require.Nil(t, after.State.Solutions)
	require.NotNil(t, after.State.Confirmed, "inputs owned by earlier steps survive")
}

func TestResetEmptiesDeactivatedSetAndStartsOver(t *testing.T) {
	m := newMockBackend()
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)
	driveToSolutions(t, o, view.ID)

	_, deactivated, err := o.Transcript(view.ID)
	require.NoError(t, err)
	require.NotEmpty(t, deactivated, "confirming competitors supersedes their card")

	after, err := o.ResetSession(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep, "a reset runs diagnosis again")
	require.NotNil(t, after.State.Diagnosis)
	require.Nil(t, after.State.Solutions)
	require.Empty(t, after.Notices)

	msgs, deactivated, err := o.Transcript(view.ID)
	require.NoError(t, err)
	require.Empty(t, deactivated, "a reset is the only way the deactivated set empties")
	for _, msg := range msgs {
		require.NotEqual(t, conversation.CardSolutions, msg.Type, "pre-reset history is gone")
	}
}

func TestIllegalRewindIsAnsweredNotExecuted(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	view := startSession(t, o)
	before, _, err := o.Transcript(view.ID)
	require.NoError(t, err)

	after, err := o.GoToStep(context.Background(), view.ID, StepArticle)
	require.NoError(t, err, "an illegal rewind is a conversational no-op, not an error")
	require.Equal(t, StepCompetitors, after.CurrentStep)
	require.NotNil(t, after.State.Diagnosis)

	msgs, deactivated, err := o.Transcript(view.ID)
	require.NoError(t, err)
	require.Len(t, msgs, len(before)+1, "exactly one clarifying message is appended")
	require.Equal(t, conversation.TypeAgent, msgs[len(msgs)-1].Type)
	require.Empty(t, deactivated)
}

func TestSessionRejectsConcurrentActions(t *testing.T) {
	m := newMockBackend()
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)
	driveToSolutions(t, o, view.ID)

	gate := make(chan struct{})
	m.mu.Lock()
	m.briefGate = gate
	m.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := o.SelectSolution(context.Background(), view.ID, "sol-1")
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, err := o.SessionView(view.ID)
		return err == nil && v.Busy
	}, time.Second, 5*time.Millisecond)

	_, err := o.Rerun(context.Background(), view.ID, "again")
	require.ErrorIs(t, err, ErrSessionBusy)
	_, err = o.HandleText(context.Background(), view.ID, "hello?")
	require.ErrorIs(t, err, ErrSessionBusy)

	close(gate)
	require.NoError(t, <-done)
	final, err := o.SessionView(view.ID)
	require.NoError(t, err)
	require.False(t, final.Busy)
	require.Equal(t, StepBrief, final.CurrentStep)
}

func TestFallbacksKeepTheWorkflowMoving(t *testing.T) {
	m := newMockBackend()
	m.failAll = true
	o, _ := newTestOrchestrator(m)

	view := startSession(t, o)
	require.Equal(t, StepCompetitors, view.CurrentStep)
	require.Equal(t, 50, view.State.Diagnosis.Score)
	require.NotEmpty(t, view.Notices)

	// each banner is mirrored by an agent chat turn with the same text
	msgs, err := o.Messages(view.ID)
	require.NoError(t, err)
	for _, n := range view.Notices {
		require.Contains(t, agentTexts(t, msgs), n.Text)
	}

	after, err := o.ConfirmCompetitors(context.Background(), view.ID, []string{"Competitor research pending"})
	require.NoError(t, err)
	require.Equal(t, StepSolution, after.CurrentStep)
	require.Len(t, after.State.Solutions, 3)

	after, err = o.SelectSolution(context.Background(), view.ID, "sol-2")
	require.NoError(t, err)
	require.NotNil(t, after.State.Brief)

	after, err = o.ConfirmBrief(context.Background(), view.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, after.State.Draft)
	require.False(t, after.State.Preflight.Passed())

	after, err = o.ApproveArticle(context.Background(), view.ID)
	require.NoError(t, err)
	require.Equal(t, StepPublish, after.CurrentStep)
	require.NotNil(t, after.State.Publish)
}

func TestRerunSupersedesOnlyCurrentStepCard(t *testing.T) {
	m := newMockBackend()
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)
	driveToSolutions(t, o, view.ID)

	after, err := o.Rerun(context.Background(), view.ID, "make them bolder")
	require.NoError(t, err)
	require.Equal(t, StepSolution, after.CurrentStep)
	require.Equal(t, 2, m.callCount("solutions"))
	require.Len(t, activeCards(t, o, view.ID, conversation.CardSolutions), 1)
	require.Len(t, activeCards(t, o, view.ID, conversation.CardDiagnosis), 1, "upstream cards stay active")
	require.Len(t, activeCards(t, o, view.ID, conversation.CardAnalysis), 1)
}

func TestHandleTextNavigates(t *testing.T) {
	m := newMockBackend()
	m.classify = func(req backend.ClassifyRequest) (*backend.Intent, error) {
		return &backend.Intent{Kind: backend.IntentNavigate, TargetStep: 2}, nil
	}
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)
	driveToBrief(t, o, view.ID)

	after, err := o.HandleText(context.Background(), view.ID, "go back to the competitor list")
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep)
	require.Nil(t, after.State.Brief)
}

func TestHandleTextRejectsForwardNavigation(t *testing.T) {
	m := newMockBackend()
	m.classify = func(req backend.ClassifyRequest) (*backend.Intent, error) {
		return &backend.Intent{Kind: backend.IntentNavigate, TargetStep: 6}, nil
	}
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)

	after, err := o.HandleText(context.Background(), view.ID, "jump to the article")
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep, "the classifier verdict is advisory; forward jumps are refused")
}

func TestHandleTextClassifierFailureIsGraceful(t *testing.T) {
	m := newMockBackend()
	m.classify = func(req backend.ClassifyRequest) (*backend.Intent, error) {
		return nil, errors.New("model unavailable")
	}
	o, _ := newTestOrchestrator(m)
	view := startSession(t, o)

	after, err := o.HandleText(context.Background(), view.ID, "???")
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep)
	msgs, _, err := o.Transcript(view.ID)
	require.NoError(t, err)
	require.Equal(t, conversation.TypeAgent, msgs[len(msgs)-1].Type)
}

func TestUnknownSession(t *testing.T) {
	o, _ := newTestOrchestrator(newMockBackend())
	_, err := o.SessionView("nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = o.Rerun(context.Background(), "nope", "")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
