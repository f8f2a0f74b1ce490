package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	maxGroupName        = 100
	maxGroupDescription = 500
)

// GroupService owns groups and their membership.
type GroupService struct {
	store storage.Store
	opts  options
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, opts ...Option) *GroupService {
	return &GroupService{store: store, opts: buildOptions(opts)}
}

// CreateGroup creates a new group. The creator becomes its first member.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name, description string) (*models.Group, error) {
	slog.Info("CreateGroup request received", "creator_id", creatorID, "name", name)

	if err := requireID("creator_id", creatorID); err != nil {
		return nil, err
	}
	name, err := requireText("name", name, 1, maxGroupName)
	if err != nil {
		return nil, err
	}
	description, err = requireText("description", description, 0, maxGroupDescription)
	if err != nil {
		return nil, err
	}

	now := s.opts.now().UnixMilli()
	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Save to storage (generates ID and writes the creator's membership)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, apperr.Internal(err, "failed to create group")
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// GetGroup returns a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, groupID, callerID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "group "+groupID+" not found", "failed to load group")
	}
	if !group.HasMember(callerID) {
		return nil, apperr.Forbidden("not a member of group %s", groupID)
	}
	return group, nil
}

// UpdateGroup changes name and/or description. Only the creator may do this.
// A nil field is left unchanged.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, actorID string, name, description *string) (*models.Group, error) {
	slog.Info("UpdateGroup request received", "group_id", groupID, "actor_id", actorID)

	var updated *models.Group
	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.LockGroup(ctx, groupID)
		if err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to load group")
		}
		if group.CreatedBy != actorID {
			return apperr.Forbidden("only the group creator can edit group %s", groupID)
		}

		if name != nil {
			if group.Name, err = requireText("name", *name, 1, maxGroupName); err != nil {
				return err
			}
		}
		if description != nil {
			if group.Description, err = requireText("description", *description, 0, maxGroupDescription); err != nil {
				return err
			}
		}
		group.UpdatedAt = s.opts.now().UnixMilli()

		if err := q.UpdateGroup(ctx, group); err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to update group")
		}
		updated = group
		return nil
	})
	if err != nil {
		slog.Warn("UpdateGroup failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Group updated", "group_id", groupID)
	return updated, nil
}

// DeleteGroup removes a group with all of its expenses and shares.
// Only the creator may do this.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, actorID string) error {
	slog.Info("DeleteGroup request received", "group_id", groupID, "actor_id", actorID)

	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.LockGroup(ctx, groupID)
		if err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to load group")
		}
		if group.CreatedBy != actorID {
			return apperr.Forbidden("only the group creator can delete group %s", groupID)
		}
		if err := q.DeleteGroup(ctx, groupID); err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to delete group")
		}
		return nil
	})
	if err != nil {
		slog.Warn("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}

	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// AddMember adds userID to the group. The actor must already be a member.
// Adding an existing member is a no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID string) (*models.Group, error) {
	slog.Info("AddMember request received", "group_id", groupID, "actor_id", actorID, "user_id", userID)

	if err := requireID("user_id", userID); err != nil {
		return nil, err
	}

	var result *models.Group
	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.LockGroup(ctx, groupID)
		if err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to load group")
		}
		if !group.HasMember(actorID) {
			return apperr.Forbidden("not a member of group %s", groupID)
		}
		if _, err := q.GetUserByID(ctx, userID); err != nil {
			return storeError(err, "user "+userID+" not found", "failed to load user")
		}

		now := s.opts.now().UnixMilli()
		added, err := q.AddGroupMember(ctx, groupID, userID, now)
		if err != nil {
			return apperr.Internal(err, "failed to add member")
		}
		if added {
			group.Members = insertSorted(group.Members, userID)
			group.UpdatedAt = now
			if err := q.UpdateGroup(ctx, group); err != nil {
				return storeError(err, "group "+groupID+" not found", "failed to update group")
			}
			slog.Info("Member added", "group_id", groupID, "user_id", userID)
		}
		result = group
		return nil
	})
	if err != nil {
		slog.Warn("AddMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return nil, err
	}
	return result, nil
}

// RemoveMember removes userID from the group. The creator cannot be removed.
// Only the creator or the member themselves may remove a membership.
// The member's existing shares are kept.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, userID string) error {
	slog.Info("RemoveMember request received", "group_id", groupID, "actor_id", actorID, "user_id", userID)

	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.LockGroup(ctx, groupID)
		if err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to load group")
		}
		if !group.HasMember(userID) {
			return apperr.NotFound("user %s is not a member of group %s", userID, groupID)
		}
		if userID == group.CreatedBy {
			return apperr.New(apperr.KindInvalidOperation, "the group creator cannot be removed")
		}
		if actorID != group.CreatedBy && actorID != userID {
			return apperr.Forbidden("only the group creator can remove other members")
		}

		if _, err := q.RemoveGroupMember(ctx, groupID, userID); err != nil {
			return apperr.Internal(err, "failed to remove member")
		}
		group.UpdatedAt = s.opts.now().UnixMilli()
		if err := q.UpdateGroup(ctx, group); err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to update group")
		}
		return nil
	})
	if err != nil {
		slog.Warn("RemoveMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return err
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", userID)
	return nil
}

// ListVisibleGroups returns the groups userID created or belongs to, newest first.
func (s *GroupService) ListVisibleGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	groups, err := s.store.ListVisibleGroups(ctx, userID)
	if err != nil {
		slog.Error("ListVisibleGroups failed", "user_id", userID, "error", err)
		return nil, apperr.Internal(err, "failed to list groups")
	}
	slog.Debug("ListVisibleGroups successful", "user_id", userID, "count", len(groups))
	return groups, nil
}

// IsMember reports whether userID belongs to the group.
func (s *GroupService) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	ok, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return false, apperr.Internal(err, "failed to check membership")
	}
	return ok, nil
}

// ListMembers returns the group's members, sorted by user ID.
func (s *GroupService) ListMembers(ctx context.Context, groupID, callerID string) ([]*models.User, error) {
	group, err := s.GetGroup(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load members")
	}

	members := make([]*models.User, 0, len(users))
	for _, id := range group.Members {
		if u, ok := users[id]; ok {
			members = append(members, u)
		}
	}
	return members, nil
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
