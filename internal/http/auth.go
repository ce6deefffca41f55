package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/athenareader/athena/internal/auth"
)

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns a bearer token for it.
func (controller *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	token, err := controller.service.IssueToken(user)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login checks credentials and returns a bearer token.
func (controller *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondBadRequest(c, "username and password are required")
		return
	}

	user, err := controller.service.Authenticate(c.ClientIP(), req.Username, req.Password)
	if err != nil {
		var locked *auth.LockedOutError
		if errors.As(err, &locked) {
			c.Header("Retry-After", locked.RetryAfter.String())
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
			return
		}
		if errors.Is(err, auth.ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	token, err := controller.service.IssueToken(user)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Me returns the authenticated user.
func (controller *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.CurrentUser(c))
}
