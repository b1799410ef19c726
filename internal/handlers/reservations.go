package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"lamason/internal/middleware"
	"lamason/internal/service"
)

const qrCodeSize = 256

func CreateReservation(reservations *service.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /reservations"
		defer handlePanic(c, route)

		var req service.ReservationInput
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		reservation, err := reservations.Create(ctx, req, middleware.CurrentUserID(c))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Printf("[%s] created reservation %s", route, reservation.ID.Hex())
		c.JSON(http.StatusCreated, reservation)
	}
}

func UpdateReservationStatus(reservations *service.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /reservations/:id/status"
		defer handlePanic(c, route)

		var req statusRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := storeContext(c)
		defer cancel()

		reservation, err := reservations.SetStatus(ctx, c.Param("id"), req.Status)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, reservation)
	}
}

func ListReservations(reservations *service.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reservations"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		list, err := reservations.List(ctx, viewerFrom(c), c.Query("status"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d reservations", route, len(list))
		c.JSON(http.StatusOK, list)
	}
}

// ReservationQRCode renders a PNG that points at the reservation, for the
// guest to show on arrival.
func ReservationQRCode(reservations *service.ReservationService, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reservations/:id/qrcode"
		defer handlePanic(c, route)

		ctx, cancel := storeContext(c)
		defer cancel()

		reservation, err := reservations.Get(ctx, c.Param("id"))
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		payload := "reservation:" + reservation.ID.Hex()
		if base := strings.TrimRight(publicBaseURL, "/"); base != "" {
			payload = base + "/reservations/" + reservation.ID.Hex()
		}

		png, err := qrcode.Encode(payload, qrcode.Medium, qrCodeSize)
		if err != nil {
			log.Printf("[%s] [ERROR] qr encode failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "could not render qr code")
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
