package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bougzy/cojf/internal/auth"
	"github.com/bougzy/cojf/internal/guard"
	"github.com/bougzy/cojf/internal/models"
	"github.com/bougzy/cojf/internal/repository"
	"github.com/bougzy/cojf/internal/session"
)

type AuthHandler struct {
	userRepo   *repository.UserRepository
	jwtService *auth.JWTService
	sessions   session.Store
}

func NewAuthHandler(userRepo *repository.UserRepository, jwtService *auth.JWTService, sessions session.Store) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.UserType == "" {
		req.UserType = models.UserTypeBuyer
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		UserType:     req.UserType,
		Role:         models.RoleNone,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := user.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userRepo.Create(user); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, models.LoginResponse{
		Token: token,
		User:  *user,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token: token,
		User:  *user,
	})
}

// Validate confirms the bearer token. Runs behind AuthMiddleware, so
// arriving here means the token checked out.
func (h *AuthHandler) Validate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// Logout clears the cached session. With a redirect query parameter the
// response is a browser redirect; otherwise plain JSON.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Get("token")

	sess, err := session.Load(c.Request.Context(), h.sessions, token.(string))
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load session")
		return
	}

	target := c.Query("redirect")
	if target != "" {
		g := guard.New(sess, guard.NavigatorFunc(func(t string) {
			c.Redirect(http.StatusFound, t)
		}), "")
		g.Logout(c.Request.Context(), target)
		return
	}

	if err := sess.Clear(c.Request.Context()); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to clear session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// GetMe returns the current user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	user, err := h.userRepo.GetByID(uid)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

// issueSession generates a token and caches the profile claims under it
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) (string, error) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}

	sess := session.New(h.sessions, token)
	sess.Token = token
	sess.Profile = session.Profile{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		UserType:    user.UserType,
		Role:        user.Role,
	}
	if err := sess.Save(c.Request.Context()); err != nil {
		return "", err
	}

	return token, nil
}
