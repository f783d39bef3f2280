package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/tourism-booking-api/internal/interface/http"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
)

type BookingModule struct {
	Handler  *handlers.BookingHandler
	Verifier middleware.TokenVerifier
}

func NewBookingModule(h *handlers.BookingHandler, v middleware.TokenVerifier) *BookingModule {
	return &BookingModule{Handler: h, Verifier: v}
}

func (m *BookingModule) Register(rg *gin.RouterGroup) {
	b := rg.Group("/bookings")
	b.Use(middleware.JWTAuth(m.Verifier))
	{
		b.POST("/hotel", m.Handler.BookHotel)
		b.GET("/hotel", m.Handler.ListHotels)
		b.POST("/restaurant", m.Handler.BookRestaurant)
		b.GET("/restaurant", m.Handler.ListRestaurants)
		b.POST("/taxi", m.Handler.BookTaxi)
		b.GET("/taxi", m.Handler.ListTaxis)
		b.GET("/all", m.Handler.ListAll)
		b.GET("/search", m.Handler.Search)
	}
}
