package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"lamason/internal/middleware"
	"lamason/internal/models"
	"lamason/internal/service"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        *models.User `json:"user"`
}

func issueUserToken(user *models.User, secret string, accessTTL time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"role":   user.Role,
		"email":  user.Email,
		"exp":    time.Now().Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func respondWithToken(c *gin.Context, route string, status int, user *models.User, secret string, accessTTL time.Duration) {
	accessToken, err := issueUserToken(user, secret, accessTTL)
	if err != nil {
		log.Printf("[AUTH] [ERROR] token generation failed: %v", err)
		respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
		return
	}
	c.JSON(status, authResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(accessTTL.Seconds()),
		User:        user,
	})
}

func Register(users *service.UserService, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req service.RegisterInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		user, err := users.Register(ctx, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		respondWithToken(c, route, http.StatusCreated, user, jwtSecret, accessTTL)
	}
}

// Login serves customers and admins alike; the role travels in the token.
func Login(users *service.UserService, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		user, err := users.Authenticate(ctx, req.Email, req.Password)
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Println("[AUTH] [ERROR] login invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] login succeeded:", user.Email)
		respondWithToken(c, route, http.StatusOK, user, jwtSecret, accessTTL)
	}
}

func GetMe(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		userID := middleware.CurrentUserID(c)
		if userID == nil {
			log.Println("[AUTH] [ERROR] userId missing in context")
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		user, err := users.Get(ctx, *userID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func GetAllUsers(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/users"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		list, err := users.List(ctx)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
