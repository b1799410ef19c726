package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lamason/internal/service"
)

func GetCategories(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		log.Printf("[%s] hit", route)

		ctx, cancel := storeContext(c)
		defer cancel()

		list, err := categories.List(ctx, true)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d categories", route, len(list))
		c.JSON(http.StatusOK, list)
	}
}

// GetAllCategories includes inactive ones; ?isActive=true narrows it down.
func GetAllCategories(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/categories"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		list, err := categories.List(ctx, strings.TrimSpace(c.Query("isActive")) == "true")
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": list})
	}
}

func CreateCategory(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/categories"
		defer handlePanic(c, route)

		var req service.CategoryInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		category, err := categories.Create(ctx, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/categories/:id"
		defer handlePanic(c, route)

		var req service.CategoryPatch
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		category, err := categories.Update(ctx, c.Param("id"), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DeleteCategory deactivates; menu items keep pointing at it.
func DeleteCategory(categories *service.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/categories/:id"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		category, err := categories.Deactivate(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "category deactivated", "id": category.ID.Hex()})
	}
}
