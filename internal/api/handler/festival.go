package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository"
	"github.com/Ironmac17/ParkEase-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type FestivalHandler struct {
	parkingService *service.ParkingService
}

func NewFestivalHandler(ps *service.ParkingService) *FestivalHandler {
	return &FestivalHandler{parkingService: ps}
}

// POST /festivals
func (h *FestivalHandler) CreateFestival(c *gin.Context) {
	var dto domain.FestivalDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	festival, err := h.parkingService.CreateFestival(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo festival"})
		return
	}
	c.JSON(http.StatusCreated, festival)
}

// GET /festivals
func (h *FestivalHandler) GetAllFestivals(c *gin.Context) {
	festivals, err := h.parkingService.GetAllFestivals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách festival"})
		return
	}
	c.JSON(http.StatusOK, festivals)
}

// DELETE /festivals/:id
func (h *FestivalHandler) DeleteFestival(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID festival không hợp lệ"})
		return
	}

	if err := h.parkingService.DeleteFestival(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy festival để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa festival"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa festival"})
}
