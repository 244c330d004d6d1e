package usecase

import (
	"context"
	"errors"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/policy"
)

// AccessUsecase assembles the policy input for a (subject, actor)
// pair: both-direction tiers, mutual PEOPLES, door state and
// access-list entries. The decision itself is delegated to the pure
// resolver.
type AccessUsecase struct {
	graph     *GraphUsecase
	rooms     RoomRepository
	resolver  *policy.Resolver
	scheduler *SchedulerUsecase
}

func NewAccessUsecase(
	graph *GraphUsecase,
	rooms RoomRepository,
	resolver *policy.Resolver,
	scheduler *SchedulerUsecase,
) *AccessUsecase {
	return &AccessUsecase{
		graph:     graph,
		rooms:     rooms,
		resolver:  resolver,
		scheduler: scheduler,
	}
}

// relation resolves the actor's tier as classified by the subject,
// plus the shared precedence-chain context.
func (uc *AccessUsecase) relation(ctx context.Context, subject, actor string) (banibs.Tier, policy.Context, error) {
	pctx := policy.Context{Self: subject == actor}
	if pctx.Self {
		return banibs.TierPeoples, pctx, nil
	}

	tier, err := uc.graph.TierOf(ctx, subject, actor)
	if err != nil {
		return banibs.TierOthers, pctx, err
	}
	mutual, err := uc.graph.MutualPeoples(ctx, subject, actor)
	if err != nil {
		return tier, pctx, err
	}
	pctx.MutualPeoples = mutual
	return tier, pctx, nil
}

// CanSeeContent decides whether viewer may see author's content at the
// given visibility level.
func (uc *AccessUsecase) CanSeeContent(ctx context.Context, author, viewer string, visibility banibs.ContentVisibility) (policy.Decision, error) {
	tier, pctx, err := uc.relation(ctx, author, viewer)
	if err != nil {
		return policy.Decision{}, err
	}
	return uc.resolver.CanSeeContent(tier, visibility, pctx), nil
}

// CanSendDM decides whether sender may open or continue a thread with
// recipient.
func (uc *AccessUsecase) CanSendDM(ctx context.Context, sender, recipient string, existingThread bool) (policy.Decision, error) {
	tier, pctx, err := uc.relation(ctx, recipient, sender)
	if err != nil {
		return policy.Decision{}, err
	}
	return uc.resolver.CanSendDM(tier, existingThread, pctx), nil
}

// ProfileVisibility returns the per-field exposure of owner's profile
// for viewer.
func (uc *AccessUsecase) ProfileVisibility(ctx context.Context, owner, viewer string) (policy.ProfileFields, error) {
	tier, pctx, err := uc.relation(ctx, owner, viewer)
	if err != nil {
		return policy.ProfileFields{}, err
	}
	return uc.resolver.ProfileVisibility(tier, pctx), nil
}

// CanComment decides comment placement for commenter on author's post.
func (uc *AccessUsecase) CanComment(ctx context.Context, author, commenter string, postVisibility banibs.ContentVisibility) (policy.Decision, error) {
	tier, pctx, err := uc.relation(ctx, author, commenter)
	if err != nil {
		return policy.Decision{}, err
	}
	return uc.resolver.CanComment(tier, postVisibility, pctx), nil
}

// CanMention decides whether actor may mention target and, when the
// mention notifies immediately, enqueues the notification. A queued
// mention sends nothing until approved.
func (uc *AccessUsecase) CanMention(ctx context.Context, actor, target string) (policy.Decision, *domain.NotificationEnvelope, error) {
	tier, pctx, err := uc.relation(ctx, target, actor)
	if err != nil {
		return policy.Decision{}, nil, err
	}

	decision := uc.resolver.CanMention(tier, pctx)
	if !decision.Allowed || !decision.ImmediatelyVisible || pctx.Self {
		return decision, nil, nil
	}

	env, err := uc.scheduler.Enqueue(ctx, EnqueueInput{
		Recipient:     target,
		Actor:         actor,
		ActorTier:     tier,
		Type:          "mention",
		MutualPeoples: pctx.MutualPeoples,
	})
	if err != nil {
		return decision, nil, err
	}
	return decision, env, nil
}

// RoomEntry evaluates the door-state-gated chain for visitor entering
// owner's room. A missing door defaults to open; a missing access-list
// row leaves the tier defaults in charge.
func (uc *AccessUsecase) RoomEntry(ctx context.Context, owner, visitor string) (policy.RoomDecision, error) {
	tier, pctx, err := uc.relation(ctx, owner, visitor)
	if err != nil {
		return policy.RoomDecision{}, err
	}

	door := policy.DoorOpen
	if d, err := uc.rooms.GetDoor(ctx, owner); err == nil {
		door = policy.ParseDoorState(d.State)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return policy.RoomDecision{}, err
	}

	if entry, err := uc.rooms.GetAccessEntry(ctx, owner, visitor); err == nil {
		pctx.AccessEntry = policy.ParseAccessEntry(entry.Entry)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return policy.RoomDecision{}, err
	}

	return uc.resolver.RoomEntry(door, tier, pctx), nil
}
