package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/api/middleware"
	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
	"github.com/Ironmac17/ParkEase-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService *service.BookingService
}

func NewBookingHandler(bs *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

// POST /bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var dto domain.CreateBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startTime, err := time.Parse(time.RFC3339, dto.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time phải theo định dạng RFC3339"})
		return
	}
	endTime, err := time.Parse(time.RFC3339, dto.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time phải theo định dạng RFC3339"})
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), userID, dto, startTime, endTime)
	if err != nil {
		h.writeBookingError(c, err, "Không thể tạo booking")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /bookings/:id
func (h *BookingHandler) GetBookingByID(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID booking không hợp lệ"})
		return
	}

	booking, err := h.bookingService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy booking"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin booking"})
		return
	}

	// Admin xem được mọi booking, driver chỉ xem booking của mình.
	if role, _ := c.Get(middleware.UserRoleKey); role != "admin" && booking.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Không có quyền xem booking này"})
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /bookings
func (h *BookingHandler) GetBookings(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var filter domain.BookingFilterDTO
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Driver luôn bị ghim vào booking của chính mình, bỏ qua filter userId.
	if role, _ := c.Get(middleware.UserRoleKey); role != "admin" {
		filter.UserID = &userID
	}

	bookings, err := h.bookingService.Find(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách booking"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// POST /bookings/:id/check-in
func (h *BookingHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.bookingService.CheckIn, "Không thể check-in")
}

// POST /bookings/:id/check-out
func (h *BookingHandler) CheckOut(c *gin.Context) {
	h.transition(c, h.bookingService.CheckOut, "Không thể check-out")
}

// POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.bookingService.Cancel, "Không thể hủy booking")
}

// POST /bookings/:id/extend
func (h *BookingHandler) Extend(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID booking không hợp lệ"})
		return
	}

	var dto domain.ExtendBookingDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newEndTime, err := time.Parse(time.RFC3339, dto.NewEndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_end_time phải theo định dạng RFC3339"})
		return
	}

	booking, err := h.bookingService.Extend(c.Request.Context(), id, userID, newEndTime)
	if err != nil {
		h.writeBookingError(c, err, "Không thể gia hạn booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// transition gom phần chung của check-in/check-out/cancel: parse ID, lấy userID
// từ context và map lỗi về status code.
func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, bookingID, userID int) (*domain.Booking, error), failMsg string) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID booking không hợp lệ"})
		return
	}

	booking, err := fn(c.Request.Context(), id, userID)
	if err != nil {
		h.writeBookingError(c, err, failMsg)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) writeBookingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidTimeRange), errors.Is(err, service.ErrExtensionTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrVehicleNotOwned), errors.Is(err, service.ErrBookingNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrSpotNotAcquired),
		errors.Is(err, service.ErrBookingNotOpen),
		errors.Is(err, service.ErrBookingNotActive),
		errors.Is(err, service.ErrBookingNotConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
