package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lamason/internal/service"
)

// listMenu serves both the public and the admin listing. Pagination applies
// only when page or limit is given, as the old catalog endpoint did.
func listMenu(menu *service.MenuService, route string, includeUnavailable bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit page=%s limit=%s category=%s search=%s",
			route,
			c.Query("page"),
			c.Query("limit"),
			c.Query("category"),
			c.Query("search"),
		)

		q := service.MenuQuery{
			CategoryID:         c.Query("category"),
			Featured:           strings.EqualFold(c.Query("featured"), "true"),
			Search:             c.Query("search"),
			IncludeUnavailable: includeUnavailable,
		}

		pageStr, limitStr := c.Query("page"), c.Query("limit")
		paginated := pageStr != "" || limitStr != ""
		var page, limit int64
		if paginated {
			var err error
			page, limit, err = parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			q.Skip = (page - 1) * limit
			q.Limit = limit
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		items, total, err := menu.List(ctx, q)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d menu items", route, len(items))
		if !paginated {
			c.JSON(http.StatusOK, items)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data": items,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		})
	}
}

func GetMenu(menu *service.MenuService) gin.HandlerFunc {
	return listMenu(menu, "GET /menu", false)
}

func GetAllMenuItems(menu *service.MenuService) gin.HandlerFunc {
	return listMenu(menu, "GET /admin/api/menu", true)
}

func GetMenuItem(menu *service.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /menu/:id"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		item, err := menu.Get(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		if !item.IsAvailable {
			respondWithError(c, http.StatusNotFound, route, "menu item not found")
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func CreateMenuItem(menu *service.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/menu"
		defer handlePanic(c, route)

		var req service.MenuItemInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		item, err := menu.Create(ctx, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func UpdateMenuItem(menu *service.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/menu/:id"
		defer handlePanic(c, route)

		var req service.MenuItemPatch
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		item, err := menu.Update(ctx, c.Param("id"), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DeleteMenuItem marks the item unavailable; order history keeps its snapshot.
func DeleteMenuItem(menu *service.MenuService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/menu/:id"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		item, err := menu.Retire(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "menu item removed", "id": item.ID.Hex()})
	}
}
