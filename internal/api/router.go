package api

import (
	"github.com/Ironmac17/ParkEase-sub000/internal/api/handler"
	"github.com/Ironmac17/ParkEase-sub000/internal/api/middleware"
	"github.com/Ironmac17/ParkEase-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	as *service.AuthService,
	ps *service.ParkingService,
	allocator *service.SpotAllocator,
	bs *service.BookingService,
	ws *service.WalletService,
	vs *service.VehicleService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint (không cần auth cho real-time connection)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		lotH := handler.NewParkingLotHandler(ps)
		lotRoutes := v1.Group("/parking-lots")
		{
			lotRoutes.POST("", authMw.AuthorizeRole("admin"), lotH.CreateParkingLot)
			lotRoutes.GET("", lotH.GetAllParkingLots)
			lotRoutes.GET("/:id", lotH.GetParkingLotByID)
			lotRoutes.PUT("/:id", authMw.AuthorizeRole("admin"), lotH.UpdateParkingLot)
			lotRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), lotH.DeleteParkingLot)
			lotRoutes.GET("/:id/spots", lotH.GetSpotsByLot)
			lotRoutes.GET("/:id/availability", lotH.GetLotAvailability)
		}

		spotH := handler.NewParkingSpotHandler(ps, allocator)
		spotRoutes := v1.Group("/parking-spots")
		{
			spotRoutes.POST("", authMw.AuthorizeRole("admin"), spotH.CreateParkingSpot)
			spotRoutes.GET("/:spot_id", spotH.GetParkingSpotByID)
			spotRoutes.PUT("/:spot_id/close", authMw.AuthorizeRole("admin"), spotH.CloseParkingSpot)
			spotRoutes.PUT("/:spot_id/reopen", authMw.AuthorizeRole("admin"), spotH.ReopenParkingSpot)
			spotRoutes.DELETE("/:spot_id", authMw.AuthorizeRole("admin"), spotH.DeleteParkingSpot)
		}

		festivalH := handler.NewFestivalHandler(ps)
		festivalRoutes := v1.Group("/festivals")
		{
			festivalRoutes.POST("", authMw.AuthorizeRole("admin"), festivalH.CreateFestival)
			festivalRoutes.GET("", festivalH.GetAllFestivals)
			festivalRoutes.DELETE("/:id", authMw.AuthorizeRole("admin"), festivalH.DeleteFestival)
		}

		vehicleH := handler.NewVehicleHandler(vs)
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", vehicleH.RegisterVehicle)
			vehicleRoutes.GET("", vehicleH.GetMyVehicles)
		}

		bookingH := handler.NewBookingHandler(bs)
		bookingRoutes := v1.Group("/bookings")
		{
			bookingRoutes.POST("", bookingH.CreateBooking)
			bookingRoutes.GET("", bookingH.GetBookings)
			bookingRoutes.GET("/:id", bookingH.GetBookingByID)
			bookingRoutes.POST("/:id/check-in", bookingH.CheckIn)
			bookingRoutes.POST("/:id/check-out", bookingH.CheckOut)
			bookingRoutes.POST("/:id/extend", bookingH.Extend)
			bookingRoutes.POST("/:id/cancel", bookingH.Cancel)
		}

		walletH := handler.NewWalletHandler(ws)
		walletRoutes := v1.Group("/wallet")
		{
			walletRoutes.GET("", walletH.GetWallet)
			walletRoutes.POST("/topup", walletH.TopUp)
			walletRoutes.GET("/transactions", walletH.GetTransactions)
		}
	}

	return r
}
