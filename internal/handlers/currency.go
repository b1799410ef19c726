package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lamason/internal/service"
)

func ListCurrencies(currencies *service.CurrencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /currency-settings"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		settings, err := currencies.List(ctx)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func CreateCurrency(currencies *service.CurrencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /currency-settings"
		defer handlePanic(c, route)

		var req service.CurrencyInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		setting, err := currencies.Create(ctx, req)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, setting)
	}
}

func SetDefaultCurrency(currencies *service.CurrencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /currency-settings/:id/default"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		setting, err := currencies.SetDefault(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, setting)
	}
}
