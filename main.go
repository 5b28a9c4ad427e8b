package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/api"
	"github.com/Ironmac17/ParkEase-sub000/internal/api/handler"
	"github.com/Ironmac17/ParkEase-sub000/internal/api/middleware"
	"github.com/Ironmac17/ParkEase-sub000/internal/config"
	"github.com/Ironmac17/ParkEase-sub000/internal/notify"
	"github.com/Ironmac17/ParkEase-sub000/internal/repository/postgresql"
	"github.com/Ironmac17/ParkEase-sub000/internal/service"
	"github.com/Ironmac17/ParkEase-sub000/internal/worker"

	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Cấu hình đã được tải.")

	// 2. Setup Database Connection
	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("Không thể kết nối database: %v", err)
	}
	defer db.Close()
	log.Println("Đã kết nối database thành công!")

	// 3. Khởi tạo notifier (SQS nếu có queue URL, noop nếu không)
	var notifier service.NotificationSink = notify.NoopNotifier{}
	if cfg.SQSNotifyQueueURL == "" {
		log.Println("CẢNH BÁO: SQS_NOTIFY_QUEUE_URL chưa được cấu hình. Thông báo sẽ không được gửi.")
	} else {
		awsSDKCfg, err := awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Không thể tải AWS SDK config: %v", err)
		}
		log.Println("Đã tải AWS SDK config thành công cho region:", cfg.AWSRegion)
		notifier = notify.NewSQSNotifier(sqs.NewFromConfig(awsSDKCfg), cfg.SQSNotifyQueueURL)
	}

	// 4. Initialize Repositories
	userRepo := postgresql.NewPgUserRepository(db)
	vehicleRepo := postgresql.NewPgVehicleRepository(db)
	parkingLotRepo := postgresql.NewPgParkingLotRepository(db)
	parkingSpotRepo := postgresql.NewPgParkingSpotRepository(db)
	festivalRepo := postgresql.NewPgFestivalRepository(db)
	bookingRepo := postgresql.NewPgBookingRepository(db)
	walletRepo := postgresql.NewPgWalletRepository(db)

	// init websocket manager
	webSocketManager := handler.NewWebSocketManager()
	go webSocketManager.Start()
	log.Println("WebSocket Manager đã được khởi động.")

	// 5. Initialize Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours)
	parkingService := service.NewParkingService(parkingLotRepo, parkingSpotRepo, festivalRepo)
	vehicleService := service.NewVehicleService(vehicleRepo)
	pricingService := service.NewPricingService(festivalRepo)
	walletService := service.NewWalletService(walletRepo)
	spotAllocator := service.NewSpotAllocator(parkingSpotRepo, webSocketManager)
	bookingService := service.NewBookingService(
		bookingRepo, parkingLotRepo, vehicleRepo,
		spotAllocator, pricingService, walletService, webSocketManager,
		cfg.HoldMinutes, cfg.ExtensionCap, cfg.RefundCutoffMinutes,
	)

	// 6. Initialize Auth Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 7. Khởi tạo và chạy AutoCheckoutSweeper
	var wg sync.WaitGroup
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())

	sweeper := worker.NewAutoCheckoutSweeper(bookingService, notifier, cfg.SweepInterval)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Start(sweeperCtx)
	}()

	// 8. Setup HTTP Router
	router := api.SetupRouter(authService, parkingService, spotAllocator, bookingService,
		walletService, vehicleService, authMiddleware, webSocketManager)

	// 9. Start HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server đang chạy trên port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Lỗi ListenAndServe(): %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Đang tắt server...")

	cancelSweeper()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server buộc phải tắt: %v", err)
	}

	wg.Wait()
	log.Println("Server đã thoát.")
}
