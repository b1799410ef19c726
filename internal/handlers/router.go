package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lamason/internal/events"
	"lamason/internal/middleware"
	"lamason/internal/service"
	"lamason/internal/store"
)

// Deps is everything the routes need.
type Deps struct {
	Store         *store.Store
	Orders        *service.OrderService
	Reservations  *service.ReservationService
	Currencies    *service.CurrencyService
	Menu          *service.MenuService
	Categories    *service.CategoryService
	Carts         *service.CartService
	Users         *service.UserService
	Hub           *events.Hub
	JWTSecret     string
	AccessTTL     time.Duration
	CORSOrigins   []string
	PublicBaseURL string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID(), middleware.CORS(d.CORSOrigins))

	admin := middleware.AdminAuth(d.JWTSecret)
	user := middleware.UserAuth(d.JWTSecret)
	optionalUser := middleware.OptionalUserAuth(d.JWTSecret)

	r.GET("/healthz", Health(d.Store))

	r.POST("/auth/register", Register(d.Users, d.JWTSecret, d.AccessTTL))
	r.POST("/auth/login", Login(d.Users, d.JWTSecret, d.AccessTTL))
	r.GET("/auth/me", user, GetMe(d.Users))

	r.GET("/menu", GetMenu(d.Menu))
	r.GET("/menu/:id", GetMenuItem(d.Menu))
	r.GET("/categories", GetCategories(d.Categories))

	r.POST("/orders", optionalUser, CreateOrder(d.Orders))
	r.GET("/orders", user, ListOrders(d.Orders))
	r.GET("/orders/:id", user, GetOrder(d.Orders))
	r.PATCH("/orders/:id/status", admin, UpdateOrderStatus(d.Orders))

	r.POST("/reservations", optionalUser, CreateReservation(d.Reservations))
	r.GET("/reservations", user, ListReservations(d.Reservations))
	r.GET("/reservations/:id/qrcode", ReservationQRCode(d.Reservations, d.PublicBaseURL))
	r.PATCH("/reservations/:id/status", admin, UpdateReservationStatus(d.Reservations))

	r.GET("/currency-settings", ListCurrencies(d.Currencies))
	r.POST("/currency-settings", admin, CreateCurrency(d.Currencies))
	r.PATCH("/currency-settings/:id/default", admin, SetDefaultCurrency(d.Currencies))
	r.POST("/currency-settings/:id/default", admin, SetDefaultCurrency(d.Currencies))

	cart := r.Group("/cart")
	cart.Use(middleware.CartSession())
	{
		cart.GET("", GetCart(d.Carts))
		cart.DELETE("", ClearCart(d.Carts))
		cart.POST("/items", AddCartItem(d.Carts))
		cart.PATCH("/items/:menuItemId", UpdateCartItem(d.Carts))
		cart.DELETE("/items/:menuItemId", RemoveCartItem(d.Carts))
		cart.PUT("/order-type", SetCartOrderType(d.Carts))
	}

	adminAPI := r.Group("/admin/api")
	adminAPI.Use(admin)
	{
		adminAPI.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		adminAPI.GET("/menu", GetAllMenuItems(d.Menu))
		adminAPI.POST("/menu", CreateMenuItem(d.Menu))
		adminAPI.PUT("/menu/:id", UpdateMenuItem(d.Menu))
		adminAPI.DELETE("/menu/:id", DeleteMenuItem(d.Menu))

		adminAPI.GET("/categories", GetAllCategories(d.Categories))
		adminAPI.POST("/categories", CreateCategory(d.Categories))
		adminAPI.PUT("/categories/:id", UpdateCategory(d.Categories))
		adminAPI.DELETE("/categories/:id", DeleteCategory(d.Categories))

		adminAPI.GET("/users", GetAllUsers(d.Users))
		adminAPI.GET("/ws", AdminEvents(d.Hub))
	}

	return r
}
