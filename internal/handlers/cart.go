package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lamason/internal/middleware"
	"lamason/internal/service"
)

func cartSession(c *gin.Context) string {
	return c.GetString(middleware.ContextCartSession)
}

func GetCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		view, err := carts.View(ctx, cartSession(c), c.Query("currency"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func AddCartItem(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req service.CartItemInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		view, err := carts.AddItem(ctx, cartSession(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func UpdateCartItem(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/items/:menuItemId"
		defer handlePanic(c, route)

		var req service.CartQuantityInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		view, err := carts.SetQuantity(ctx, cartSession(c), c.Param("menuItemId"), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func RemoveCartItem(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:menuItemId"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		view, err := carts.RemoveItem(ctx, cartSession(c), c.Param("menuItemId"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func ClearCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		if err := carts.Clear(ctx, cartSession(c)); err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func SetCartOrderType(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/order-type"
		defer handlePanic(c, route)

		var req service.CartOrderTypeInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		view, err := carts.SetOrderType(ctx, cartSession(c), req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
