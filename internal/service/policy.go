package service

import (
	"context"
	"fmt"

	"github.com/teamhub/team-service/internal/domain"
)

// Action is the verb phrase a permission check is made for.
type Action string

const (
	ActionCreate        Action = "create teams in"
	ActionAddMembers    Action = "add members to"
	ActionRemoveMembers Action = "remove members from"
	ActionUpdate        Action = "update"
	ActionUpdateAvatar  Action = "update avatar for"
	ActionDeleteAvatar  Action = "delete avatar for"
	ActionDelete        Action = "delete"
	ActionView          Action = "view"
)

// GrantSource tags which rule granted a Decision.
type GrantSource string

const (
	GrantNone               GrantSource = ""
	GrantAdmin              GrantSource = "ADMIN"
	GrantOrganizationOwner  GrantSource = "ORGANIZATION_OWNER"
	GrantTeamCreator        GrantSource = "TEAM_CREATOR"
	GrantTeamLeader         GrantSource = "TEAM_LEADER"
	GrantOrganizationMember GrantSource = "ORGANIZATION_MEMBER"
)

// Decision is the outcome of a permission check.
type Decision struct {
	Granted bool
	Source  GrantSource
	Reason  string
}

// Err converts a denial into a PERMISSION_DENIED error.
func (d Decision) Err() error {
	if d.Granted {
		return nil
	}
	return errForbidden(d.Reason)
}

// LeaderLookup reports active LEADER membership.
type LeaderLookup interface {
	IsActiveLeader(ctx context.Context, teamID, userID string) (bool, error)
}

// Policy decides who may act on a team.
type Policy struct {
	leaders LeaderLookup
}

// NewPolicy builds a policy over leaders.
func NewPolicy(leaders LeaderLookup) *Policy {
	return &Policy{leaders: leaders}
}

// Authorize grants when the actor is, in order: a global ADMIN, an owner of org,
// the creator of team, or an active LEADER of team. A team without an ID is a
// placeholder used when no specific team is targeted; it never grants the
// creator or leader rules.
func (p *Policy) Authorize(ctx context.Context, actor domain.Actor, org *domain.Organization, team *domain.Team, action Action) (Decision, error) {
	switch {
	case actor.IsAdmin():
		return Decision{Granted: true, Source: GrantAdmin}, nil
	case org != nil && org.IsOwner(actor.UserID):
		return Decision{Granted: true, Source: GrantOrganizationOwner}, nil
	case team != nil && team.CreatedBy != "" && team.CreatedBy == actor.UserID:
		return Decision{Granted: true, Source: GrantTeamCreator}, nil
	}

	if team != nil && team.ID != "" && actor.UserID != "" {
		leader, err := p.leaders.IsActiveLeader(ctx, team.ID, actor.UserID)
		if err != nil {
			return Decision{}, fmt.Errorf("check team leader: %w", err)
		}
		if leader {
			return Decision{Granted: true, Source: GrantTeamLeader}, nil
		}
	}

	return Decision{Granted: false, Source: GrantNone, Reason: denialReason(action)}, nil
}

// CanView is Authorize widened to any member of org. It is kept apart from
// Authorize so membership never leaks into mutation checks.
func (p *Policy) CanView(ctx context.Context, actor domain.Actor, org *domain.Organization, team *domain.Team) (Decision, error) {
	decision, err := p.Authorize(ctx, actor, org, team, ActionView)
	if err != nil || decision.Granted {
		return decision, err
	}
	if org != nil && org.IsMember(actor.UserID) {
		return Decision{Granted: true, Source: GrantOrganizationMember}, nil
	}
	return decision, nil
}

func denialReason(action Action) string {
	if action == ActionCreate {
		return fmt.Sprintf("You do not have permission to %s this organization", action)
	}
	return fmt.Sprintf("You do not have permission to %s this team", action)
}
