package service

import (
	"context"
	"fmt"
	"time"

	"github.com/framekeep/framekeep/internal/infra/notify"
	"github.com/framekeep/framekeep/internal/modules/repo"
	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StackMutationInput selects either detaching the targets from their stacks
// (RemoveParent) or grouping them under StackParentID. Exactly one must be
// set.
type StackMutationInput struct {
	AssetIDs      []uuid.UUID
	RemoveParent  bool
	StackParentID *uuid.UUID
}

type StackService interface {
	// ApplyStackMutation groups or ungroups the target assets and returns
	// every asset id the mutation touched.
	ApplyStackMutation(ctx context.Context, userID uuid.UUID, in StackMutationInput) ([]uuid.UUID, error)
}

type stackService struct {
	assets repo.AssetRepo
	stacks repo.StackRepo
	access AccessChecker
	events notify.Sender
	log    *zap.Logger
}

func NewStackService(assets repo.AssetRepo, stacks repo.StackRepo, access AccessChecker, events notify.Sender, log *zap.Logger) StackService {
	return &stackService{
		assets: assets,
		stacks: stacks,
		access: access,
		events: events,
		log:    log,
	}
}

func (s *stackService) ApplyStackMutation(ctx context.Context, userID uuid.UUID, in StackMutationInput) ([]uuid.UUID, error) {
	if in.RemoveParent == (in.StackParentID != nil) {
		return nil, fmt.Errorf("exactly one of removeParent and stackParentId must be set: %w", apperr.ErrInvalidRequest)
	}
	if len(in.AssetIDs) == 0 {
		return nil, fmt.Errorf("no asset ids given: %w", apperr.ErrInvalidRequest)
	}

	targetIDs := uniqueIDs(in.AssetIDs)
	if err := s.access.RequirePermission(ctx, userID, PermAssetUpdate, targetIDs); err != nil {
		return nil, err
	}

	if in.RemoveParent {
		return s.removeParent(ctx, userID, targetIDs)
	}
	return s.setParent(ctx, userID, *in.StackParentID, targetIDs)
}

func (s *stackService) removeParent(ctx context.Context, userID uuid.UUID, targetIDs []uuid.UUID) ([]uuid.UUID, error) {
	targets, err := s.assets.GetByIDs(ctx, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	if len(targets) != len(targetIDs) {
		return nil, fmt.Errorf("%d of %d assets: %w", len(targetIDs)-len(targets), len(targetIDs), apperr.ErrNotFound)
	}

	detaching := make(map[uuid.UUID]struct{}, len(targets))
	touched := make(map[uuid.UUID]struct{}, len(targets))
	for _, a := range targets {
		detaching[a.ID] = struct{}{}
		touched[a.ID] = struct{}{}
	}

	dissolve := make(map[uuid.UUID]struct{})
	seen := make(map[uuid.UUID]struct{})
	for _, a := range targets {
		if a.StackID == nil || a.Stack == nil {
			continue
		}
		stack := a.Stack
		if _, done := seen[stack.ID]; done {
			continue
		}
		seen[stack.ID] = struct{}{}

		remaining := make([]uuid.UUID, 0, len(stack.Assets))
		for _, id := range stack.MemberIDs() {
			if _, gone := detaching[id]; !gone {
				remaining = append(remaining, id)
			}
		}

		// A stack below two members cannot stand; whoever is left in it is
		// released along with the targets.
		if len(remaining) < 2 {
			dissolve[stack.ID] = struct{}{}
			for _, id := range remaining {
				touched[id] = struct{}{}
			}
			continue
		}

		// The stack survives. Detaching its primary hands the role to the
		// first remaining member; otherwise the primary keeps its pointer
		// but its updated_at must still reflect the membership change.
		if _, gone := detaching[stack.PrimaryAssetID]; gone {
			if err := s.stacks.SetPrimary(ctx, stack.ID, remaining[0]); err != nil {
				return nil, fmt.Errorf("promote %s in stack %s: %w", remaining[0], stack.ID, err)
			}
			touched[remaining[0]] = struct{}{}
		} else {
			touched[stack.PrimaryAssetID] = struct{}{}
		}
	}

	now := time.Now()
	if err := s.assets.UpdateAll(ctx, idSetToSlice(detaching), map[string]any{"stack_id": nil, "updated_at": now}); err != nil {
		return nil, fmt.Errorf("detach assets: %w", err)
	}
	staying := make([]uuid.UUID, 0, len(touched))
	for id := range touched {
		if _, gone := detaching[id]; !gone {
			staying = append(staying, id)
		}
	}
	if err := s.assets.UpdateAll(ctx, staying, map[string]any{"updated_at": now}); err != nil {
		return nil, fmt.Errorf("touch assets: %w", err)
	}
	if err := s.stacks.DeleteAll(ctx, idSetToSlice(dissolve)); err != nil {
		return nil, fmt.Errorf("delete stacks: %w", err)
	}

	touchedIDs := idSetToSlice(touched)
	s.events.Send(ctx, notify.EventAssetUpdate, userID, touchedIDs)
	return touchedIDs, nil
}

func (s *stackService) setParent(ctx context.Context, userID, parentID uuid.UUID, targetIDs []uuid.UUID) ([]uuid.UUID, error) {
	if err := s.access.RequirePermission(ctx, userID, PermAssetUpdate, []uuid.UUID{parentID}); err != nil {
		return nil, err
	}

	parent, err := s.assets.GetByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("load stack parent: %w", err)
	}
	if parent == nil {
		return nil, fmt.Errorf("stack parent %s: %w", parentID, apperr.ErrNotFound)
	}

	targets, err := s.assets.GetByIDs(ctx, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	wanted := uniqueIDs(append([]uuid.UUID{parentID}, targetIDs...))
	loaded := make(map[uuid.UUID]struct{}, len(targets)+1)
	loaded[parent.ID] = struct{}{}
	for _, a := range targets {
		loaded[a.ID] = struct{}{}
	}
	if len(loaded) != len(wanted) {
		return nil, fmt.Errorf("%d of %d assets: %w", len(wanted)-len(loaded), len(wanted), apperr.ErrNotFound)
	}

	members := make(map[uuid.UUID]struct{})
	members[parent.ID] = struct{}{}
	obsolete := make(map[uuid.UUID]struct{})

	// Reuse the parent's stack when it already belongs to one; its current
	// members stay in the union.
	var destStackID *uuid.UUID
	if parent.StackID != nil {
		destStackID = parent.StackID
		if parent.Stack != nil {
			for _, id := range parent.Stack.MemberIDs() {
				members[id] = struct{}{}
			}
		}
	}

	// Merging a stacked target pulls its whole former stack along — one
	// level only, siblings of siblings are not chased.
	for _, a := range targets {
		members[a.ID] = struct{}{}
		if a.StackID == nil {
			continue
		}
		if a.Stack != nil {
			for _, id := range a.Stack.MemberIDs() {
				members[id] = struct{}{}
			}
		}
		if destStackID == nil || *a.StackID != *destStackID {
			obsolete[*a.StackID] = struct{}{}
		}
	}

	memberIDs := idSetToSlice(members)

	// New membership is committed before the superseded stacks go away, so
	// a failure in between leaves re-pointed assets, never dangling ones.
	if destStackID != nil {
		if err := s.stacks.SetMembers(ctx, *destStackID, parent.ID, memberIDs); err != nil {
			return nil, fmt.Errorf("update stack %s: %w", *destStackID, err)
		}
	} else {
		created, err := s.stacks.Create(ctx, parent.OwnerID, parent.ID, memberIDs)
		if err != nil {
			return nil, fmt.Errorf("create stack: %w", err)
		}
		destStackID = &created.ID
	}

	if err := s.stacks.DeleteAll(ctx, idSetToSlice(obsolete)); err != nil {
		return nil, fmt.Errorf("delete superseded stacks: %w", err)
	}

	s.log.Sugar().Debugw("stack mutation applied",
		"stack", destStackID, "primary", parent.ID, "members", len(memberIDs))

	s.events.Send(ctx, notify.EventAssetUpdate, userID, memberIDs)
	return memberIDs, nil
}

func idSetToSlice(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
