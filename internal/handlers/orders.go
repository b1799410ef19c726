package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lamason/internal/middleware"
	"lamason/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

func CreateOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		var req service.OrderInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		order, err := orders.Submit(ctx, req, middleware.CurrentUserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Printf("[%s] created order %s", route, order.ID.Hex())
		c.JSON(http.StatusCreated, order)
	}
}

func UpdateOrderStatus(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/status"
		defer handlePanic(c, route)

		var req statusRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		order, err := orders.SetStatus(ctx, c.Param("id"), req.Status)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func ListOrders(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		list, err := orders.List(ctx, viewerFrom(c), c.Query("status"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d orders", route, len(list))
		c.JSON(http.StatusOK, list)
	}
}

func GetOrder(orders *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		order, err := orders.Get(ctx, viewerFrom(c), c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
