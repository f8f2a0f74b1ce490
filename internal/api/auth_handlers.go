package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models/dto"
	"github.com/mmynk/splitledger/internal/service"
)

func (h *Handler) session(s *service.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Status:    "success",
		Token:     s.Token,
		ExpiresIn: int(h.jwtManager.TokenDuration().Seconds()),
		User:      dto.FromUser(s.User),
	}
}

// SignUp handles user registration.
func (h *Handler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.authService.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.session(sess))
}

// Login handles user login.
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session(sess))
}

// Logout revokes the bearer token used for the request.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetClaims(c.Request.Context())); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckEmail reports whether an account already uses the email.
func (h *Handler) CheckEmail(c *gin.Context) {
	var req dto.CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	exists, err := h.authService.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CheckEmailResponse{Email: req.Email, Exists: exists})
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, profile, err := h.authService.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProfile(user, profile))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, profile, err := h.authService.UpdateProfile(c.Request.Context(), currentUser(c), service.ProfileUpdate{
		DisplayName:     req.DisplayName,
		PhoneNumber:     req.PhoneNumber,
		FoodType:        req.FoodType,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromProfile(user, profile))
}
