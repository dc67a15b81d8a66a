package workflow

import (
	"github.com/seoforge/seoforge/internal/backend"
)

// ProjectState is the authoritative data each step executor produces. A
// field owned by step k is non-nil iff step k's executor has completed since
// the last rewind below k; rewinding clears every field at or after the
// target so later steps never read stale upstream data.
type ProjectState struct {
	Diagnosis  *backend.DiagnosisReport      `json:"diagnosis,omitempty"`
	Candidates []backend.CompetitorCandidate `json:"candidates,omitempty"`
	Confirmed  []backend.CompetitorCandidate `json:"confirmed,omitempty"`
	Analysis   *backend.LandscapeReport      `json:"analysis,omitempty"`
	Solutions  []backend.Solution            `json:"solutions,omitempty"`
	Solution   *backend.Solution             `json:"solution,omitempty"`
	Brief      *backend.ContentBrief         `json:"brief,omitempty"`
	Draft      *backend.ArticleDraft         `json:"draft,omitempty"`
	Preflight  *backend.PreflightReport      `json:"preflight,omitempty"`
	Publish    *backend.PublishKit           `json:"publish,omitempty"`
}

// ClearFrom nulls every field owned by steps >= target.
func (p *ProjectState) ClearFrom(target Step) {
	if target <= StepDiagnosis {
		p.Diagnosis = nil
	}
	if target <= StepCompetitors {
		p.Candidates = nil
		p.Confirmed = nil
	}
	if target <= StepAnalysis {
		p.Analysis = nil
	}
	if target <= StepSolution {
		p.Solutions = nil
		p.Solution = nil
	}
	if target <= StepBrief {
		p.Brief = nil
	}
	if target <= StepArticle {
		p.Draft = nil
		p.Preflight = nil
	}
	if target <= StepPublish {
		p.Publish = nil
	}
}

// clone copies the state; slices are duplicated so snapshots do not alias
// live session data.
func (p ProjectState) clone() ProjectState {
	out := p
	out.Candidates = append([]backend.CompetitorCandidate(nil), p.Candidates...)
	out.Confirmed = append([]backend.CompetitorCandidate(nil), p.Confirmed...)
	out.Solutions = append([]backend.Solution(nil), p.Solutions...)
	return out
}
