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

type ParkingSpotHandler struct {
	parkingService *service.ParkingService
	allocator      *service.SpotAllocator
}

func NewParkingSpotHandler(ps *service.ParkingService, allocator *service.SpotAllocator) *ParkingSpotHandler {
	return &ParkingSpotHandler{parkingService: ps, allocator: allocator}
}

// POST /parking-spots
func (h *ParkingSpotHandler) CreateParkingSpot(c *gin.Context) {
	var dto domain.ParkingSpotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot, err := h.parkingService.CreateParkingSpot(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": "Nhãn chỗ đỗ đã tồn tại trong bãi này"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo chỗ đỗ"})
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// GET /parking-spots/:spot_id
func (h *ParkingSpotHandler) GetParkingSpotByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("spot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	spot, err := h.parkingService.GetParkingSpotByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, spot)
}

// PUT /parking-spots/:spot_id/close
func (h *ParkingSpotHandler) CloseParkingSpot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("spot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	spot, err := h.allocator.Close(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSpotNotAcquired) {
			c.JSON(http.StatusConflict, gin.H{"error": "Không thể đóng chỗ đang có xe hoặc đã đóng"})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đóng chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, spot)
}

// PUT /parking-spots/:spot_id/reopen
func (h *ParkingSpotHandler) ReopenParkingSpot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("spot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	spot, err := h.allocator.Reopen(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSpotNotAcquired) {
			c.JSON(http.StatusConflict, gin.H{"error": "Chỗ đỗ không ở trạng thái closed"})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mở lại chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, spot)
}

// DELETE /parking-spots/:spot_id
func (h *ParkingSpotHandler) DeleteParkingSpot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("spot_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID chỗ đỗ không hợp lệ"})
		return
	}

	if err := h.parkingService.DeleteParkingSpot(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy chỗ đỗ để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa chỗ đỗ"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa chỗ đỗ"})
}
