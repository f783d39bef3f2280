package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tourism-booking-api/internal/application"
	"github.com/oksasatya/tourism-booking-api/internal/interface/middleware"
	"github.com/oksasatya/tourism-booking-api/pkg/helpers"
	"github.com/oksasatya/tourism-booking-api/pkg/response"
)

type BookingHandler struct {
	Svc    *application.BookingService
	Logger logrus.FieldLogger
}

func NewBookingHandler(svc *application.BookingService, logger logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

type hotelRequest struct {
	HotelName string          `json:"hotelName"`
	CheckIn   string          `json:"checkIn"`
	CheckOut  string          `json:"checkOut"`
	Rooms     helpers.Numeric `json:"rooms"`
	Guests    helpers.Numeric `json:"guests"`
	Price     helpers.Numeric `json:"price"`
}

type restaurantRequest struct {
	RestaurantName string          `json:"restaurantName"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	Guests         helpers.Numeric `json:"guests"`
	Cuisine        string          `json:"cuisine"`
}

type taxiRequest struct {
	PickupLocation string             `json:"pickupLocation"`
	DropLocation   string             `json:"dropLocation"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
	VehicleType    string             `json:"vehicleType"`
	Distance       helpers.FlexString `json:"distance"`
	EstimatedPrice helpers.Numeric    `json:"estimatedPrice"`
}

func (h *BookingHandler) BookHotel(c *gin.Context) {
	var req hotelRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.Svc.BookHotel(c.Request.Context(), middleware.UserID(c), application.HotelInput(req))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusCreated, "Hotel booked successfully", gin.H{"booking": rec})
}

func (h *BookingHandler) BookRestaurant(c *gin.Context) {
	var req restaurantRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.Svc.BookRestaurant(c.Request.Context(), middleware.UserID(c), application.RestaurantInput(req))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusCreated, "Restaurant reservation confirmed", gin.H{"booking": rec})
}

func (h *BookingHandler) BookTaxi(c *gin.Context) {
	var req taxiRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.Svc.BookTaxi(c.Request.Context(), middleware.UserID(c), application.TaxiInput{
		PickupLocation: req.PickupLocation,
		DropLocation:   req.DropLocation,
		Date:           req.Date,
		Time:           req.Time,
		VehicleType:    req.VehicleType,
		Distance:       string(req.Distance),
		EstimatedPrice: req.EstimatedPrice,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusCreated, "Taxi booked successfully", gin.H{"booking": rec})
}

func (h *BookingHandler) ListHotels(c *gin.Context) {
	list, err := h.Svc.ListHotelBookings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) ListRestaurants(c *gin.Context) {
	list, err := h.Svc.ListRestaurantBookings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) ListTaxis(c *gin.Context) {
	list, err := h.Svc.ListTaxiBookings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) ListAll(c *gin.Context) {
	all, err := h.Svc.ListAllBookings(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// Search GET /api/bookings/search?q=&size=
func (h *BookingHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	docs, err := h.Svc.SearchBookings(c.Request.Context(), middleware.UserID(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": docs})
}
