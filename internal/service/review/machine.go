// Package review holds the approval chain of social-activity submissions:
// submitted -> tutor_approved -> deputy_approved -> dean_approved, with rejected
// reachable from every non-terminal stage.
package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/models"
)

// Policy tunes the few places where the chain is deliberately permissive.
type Policy struct {
	// AllowSkipStageReject lets any reviewer reject at any non-terminal stage.
	// When false only the role owning the pending stage (or admin) may reject.
	AllowSkipStageReject bool
	// IgnoreUnknownSubmission turns a review of a missing id into a silent
	// no-op instead of ErrSubmissionNotFound.
	IgnoreUnknownSubmission bool
}

func DefaultPolicy() Policy {
	return Policy{AllowSkipStageReject: true}
}

type TransitionError struct {
	From     models.SubmissionStatus
	Role     models.Role
	Decision models.Decision
	Reason   string
	err      error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot %s a %s submission: %s", e.err, e.Role, e.Decision, e.From, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return e.err
}

type stage struct {
	from models.SubmissionStatus
	to   models.SubmissionStatus
}

var stages = map[models.Role]stage{
	models.RoleTutor:  {from: models.StatusSubmitted, to: models.StatusTutorApproved},
	models.RoleDeputy: {from: models.StatusTutorApproved, to: models.StatusDeputyApproved},
	models.RoleDean:   {from: models.StatusDeputyApproved, to: models.StatusDeanApproved},
}

// PendingRole returns the role expected to act next on a submission in status.
func PendingRole(status models.SubmissionStatus) (models.Role, bool) {
	for role, st := range stages {
		if st.from == status {
			return role, true
		}
	}
	return "", false
}

// Visible reports whether a submission in status belongs to role's moderation queue.
func Visible(role models.Role, status models.SubmissionStatus) bool {
	if role == models.RoleAdmin {
		return !status.IsTerminal()
	}
	st, ok := stages[role]
	return ok && st.from == status
}

// Advance computes the status a decision leads to without touching any record.
func Advance(current models.SubmissionStatus, role models.Role, decision models.Decision, policy Policy) (models.SubmissionStatus, error) {
	if !role.IsReviewer() {
		return current, &TransitionError{From: current, Role: role, Decision: decision, Reason: "not a reviewer role", err: models.ErrRoleNotAllowed}
	}
	if !models.IsValidSubmissionStatus(current.String()) {
		return current, &TransitionError{From: current, Role: role, Decision: decision, Reason: "unknown status", err: models.ErrInvalidTransition}
	}

	switch decision {
	case models.DecisionReject:
		if current == models.StatusDeanApproved {
			return current, &TransitionError{From: current, Role: role, Decision: decision, Reason: "submission is already credited", err: models.ErrInvalidTransition}
		}
		if current != models.StatusRejected && !policy.AllowSkipStageReject && role != models.RoleAdmin {
			if pending, _ := PendingRole(current); pending != role {
				return current, &TransitionError{From: current, Role: role, Decision: decision, Reason: fmt.Sprintf("stage awaits %s review", pending), err: models.ErrInvalidTransition}
			}
		}
		return models.StatusRejected, nil

	case models.DecisionApprove:
		if current.IsTerminal() {
			return current, &TransitionError{From: current, Role: role, Decision: decision, Reason: "status is terminal", err: models.ErrInvalidTransition}
		}
		if role == models.RoleAdmin {
			return models.StatusDeanApproved, nil
		}
		st := stages[role]
		if st.from != current {
			return current, &TransitionError{From: current, Role: role, Decision: decision, Reason: fmt.Sprintf("%s approves only %s submissions", role, st.from), err: models.ErrInvalidTransition}
		}
		return st.to, nil

	default:
		return current, fmt.Errorf("%w: unknown decision %q", models.ErrInvalidInput, decision)
	}
}

type Input struct {
	Role     models.Role
	Decision models.Decision
	Score    *int
	Comment  *string
	At       time.Time
}

// Apply validates the decision and writes its effects into sub.
// On error sub is left untouched.
func Apply(sub *models.Submission, in Input, policy Policy) error {
	if sub == nil {
		return errors.New("nil submission")
	}

	next, err := Advance(sub.Status, in.Role, in.Decision, policy)
	if err != nil {
		return err
	}

	if in.Decision == models.DecisionReject {
		applyRejectComment(sub, in.Role, in.Comment)
	} else if in.Role == models.RoleAdmin {
		applyAdminApproval(sub, in)
	} else {
		applyStage(sub, in.Role, in, true)
	}

	sub.Status = next
	sub.UpdatedAt = in.At
	return nil
}

func applyRejectComment(sub *models.Submission, role models.Role, comment *string) {
	switch role {
	case models.RoleTutor:
		sub.TutorComment = copyString(comment)
	case models.RoleDeputy:
		sub.DeputyComment = copyString(comment)
	case models.RoleDean:
		sub.DeanComment = copyString(comment)
	case models.RoleAdmin:
		sub.TutorComment = copyString(comment)
		sub.DeputyComment = copyString(comment)
		sub.DeanComment = copyString(comment)
	}
}

// applyAdminApproval runs every stage effect in chain order. Earlier stages only
// fill what is missing; the dean comment is always replaced.
func applyAdminApproval(sub *models.Submission, in Input) {
	applyStage(sub, models.RoleTutor, in, false)
	applyStage(sub, models.RoleDeputy, in, false)
	applyStage(sub, models.RoleDean, in, false)
	sub.DeanComment = copyString(in.Comment)
}

func applyStage(sub *models.Submission, role models.Role, in Input, overwrite bool) {
	at := in.At
	switch role {
	case models.RoleTutor:
		if overwrite || sub.TutorAt == nil {
			sub.TutorAt = &at
		}
		if overwrite || sub.TutorComment == nil {
			sub.TutorComment = copyString(in.Comment)
		}
		if in.Score != nil {
			score := *in.Score
			if score < 0 {
				score = 0
			}
			sub.TutorScore = &score
		}
	case models.RoleDeputy:
		if overwrite || sub.DeputyAt == nil {
			sub.DeputyAt = &at
		}
		if overwrite || sub.DeputyComment == nil {
			sub.DeputyComment = copyString(in.Comment)
		}
	case models.RoleDean:
		if overwrite || sub.DeanAt == nil {
			sub.DeanAt = &at
		}
		if overwrite || sub.DeanComment == nil {
			sub.DeanComment = copyString(in.Comment)
		}
	}
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
