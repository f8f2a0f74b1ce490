package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/splitledger/internal/models/dto"
)

func (h *Handler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := h.groupService.CreateGroup(c.Request.Context(), currentUser(c), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromGroup(group))
}

// ListGroups returns the groups the caller created or belongs to.
func (h *Handler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.ListVisibleGroups(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromGroups(groups))
}

func (h *Handler) GetGroup(c *gin.Context) {
	group, err := h.groupService.GetGroup(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromGroup(group))
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := h.groupService.UpdateGroup(c.Request.Context(), c.Param("id"), currentUser(c), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromGroup(group))
}

func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.groupService.DeleteGroup(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMembers(c *gin.Context) {
	users, err := h.groupService.ListMembers(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := dto.ListMembersResponse{Members: make([]dto.UserResponse, len(users))}
	for i, u := range users {
		resp.Members[i] = dto.FromUser(u)
	}
	c.JSON(http.StatusOK, resp)
}

// AddMember adds a user to the group. Adding an existing member is a no-op.
func (h *Handler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	group, err := h.groupService.AddMember(c.Request.Context(), c.Param("id"), currentUser(c), req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromGroup(group))
}

func (h *Handler) RemoveMember(c *gin.Context) {
	err := h.groupService.RemoveMember(c.Request.Context(), c.Param("id"), currentUser(c), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
