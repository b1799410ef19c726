package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lamason/internal/middleware"
	"lamason/internal/service"
	"lamason/internal/store"
)

const storeTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureStore(ctx context.Context, st *store.Store) error {
	if st.Ping == nil {
		return nil
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return st.Ping(checkCtx)
}

func storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storeTimeout)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] [%s] returning error %d: %s", route, c.GetString(middleware.ContextRequestID), status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondValidation(c *gin.Context, route string, fields []service.FieldError) {
	log.Printf("[%s] [%s] [INFO] validation failed on %d fields", route, c.GetString(middleware.ContextRequestID), len(fields))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "validation failed",
		"details": fields,
	})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, route string, err error) {
	var (
		validationErr *service.ValidationError
		notFoundErr   *service.NotFoundError
		transitionErr *service.IllegalTransitionError
		conflictErr   *service.ConflictError
		persistErr    *service.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		respondValidation(c, route, validationErr.Fields)
	case errors.As(err, &notFoundErr):
		respondWithError(c, http.StatusNotFound, route, notFoundErr.Error())
	case errors.As(err, &transitionErr):
		respondWithError(c, http.StatusConflict, route, transitionErr.Error())
	case errors.As(err, &conflictErr):
		respondWithError(c, http.StatusConflict, route, conflictErr.Error())
	case errors.As(err, &persistErr):
		log.Printf("[%s] [ERROR] %v", route, persistErr)
		respondWithError(c, http.StatusInternalServerError, route, "could not save your request, please try again")
	default:
		log.Printf("[%s] [ERROR] %v", route, err)
		respondWithError(c, http.StatusInternalServerError, route, "internal server error")
	}
}

// bindJSON decodes the body into dst. Type mismatches such as a fractional
// quantity are reported as field errors.
func bindJSON(c *gin.Context, route string, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := typeErr.Field
		if path == "" {
			path = "body"
		}
		respondValidation(c, route, []service.FieldError{{Path: path, Message: "must be a " + typeErr.Type.String()}})
		return false
	}
	if errors.Is(err, io.EOF) {
		respondWithError(c, http.StatusBadRequest, route, "request body is required")
		return false
	}
	respondWithError(c, http.StatusBadRequest, route, "invalid body")
	return false
}

func viewerFrom(c *gin.Context) service.Viewer {
	return service.Viewer{UserID: middleware.CurrentUserID(c), Admin: middleware.IsAdmin(c)}
}
