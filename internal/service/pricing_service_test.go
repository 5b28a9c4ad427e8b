package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Ironmac17/ParkEase-sub000/internal/domain"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testLot(baseRate, weekendMult, festivalMult float64) *domain.ParkingLot {
	return &domain.ParkingLot{
		ID:                 1,
		BaseRate:           baseRate,
		WeekendMultiplier:  weekendMult,
		FestivalMultiplier: festivalMult,
	}
}

// 2026-03-04 là thứ Tư, 2026-03-07 là thứ Bảy.
var (
	weekday  = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
)

func TestAmountZeroDuration(t *testing.T) {
	pricing := NewPricingService(newFakeFestivalRepo())
	lot := testLot(100, 1.2, 1.5)

	amount, err := pricing.Amount(context.Background(), lot, weekday, weekday)
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if amount != 0 {
		t.Fatalf("khoảng rỗng phải có giá 0, nhận được %.2f", amount)
	}
}

func TestAmountWeekdayBaseRate(t *testing.T) {
	pricing := NewPricingService(newFakeFestivalRepo())
	lot := testLot(100, 1.2, 1.5)

	amount, err := pricing.Amount(context.Background(), lot, weekday, weekday.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if !approxEqual(amount, 200) {
		t.Fatalf("2 giờ ngày thường @100 phải là 200, nhận được %.2f", amount)
	}
}

func TestAmountWeekendMultiplier(t *testing.T) {
	pricing := NewPricingService(newFakeFestivalRepo())
	lot := testLot(100, 1.2, 1.5)

	amount, err := pricing.Amount(context.Background(), lot, saturday, saturday.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if !approxEqual(amount, 240) {
		t.Fatalf("2 giờ thứ Bảy @100 x1.2 phải là 240, nhận được %.2f", amount)
	}
}

func TestFestivalBeatsWeekend(t *testing.T) {
	festivalRepo := newFakeFestivalRepo()
	festivalRepo.addFestival(saturday.Add(-24*time.Hour), saturday.Add(24*time.Hour), 0)
	pricing := NewPricingService(festivalRepo)
	lot := testLot(100, 1.2, 1.5)

	amount, err := pricing.Amount(context.Background(), lot, saturday, saturday.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if !approxEqual(amount, 300) {
		t.Fatalf("festival phải thắng cuối tuần: 2 giờ @100 x1.5 = 300, nhận được %.2f", amount)
	}
}

func TestFestivalRecordMultiplierWins(t *testing.T) {
	festivalRepo := newFakeFestivalRepo()
	festivalRepo.addFestival(weekday.Add(-time.Hour), weekday.Add(time.Hour), 2.0)
	pricing := NewPricingService(festivalRepo)
	lot := testLot(100, 1.2, 1.5)

	rate, err := pricing.HourlyRate(context.Background(), lot, weekday)
	if err != nil {
		t.Fatalf("HourlyRate trả về lỗi: %v", err)
	}
	if !approxEqual(rate, 200) {
		t.Fatalf("multiplier của bản ghi festival phải ghi đè multiplier của bãi: muốn 200, nhận được %.2f", rate)
	}
}

func TestAmountRoundsUpToMinute(t *testing.T) {
	pricing := NewPricingService(newFakeFestivalRepo())
	lot := testLot(100, 1.2, 1.5)

	// 1 giây được làm tròn lên 1 phút.
	amount, err := pricing.Amount(context.Background(), lot, weekday, weekday.Add(time.Second))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if !approxEqual(amount, 100.0/60.0) {
		t.Fatalf("1 giây phải tính như 1 phút: muốn %.4f, nhận được %.4f", 100.0/60.0, amount)
	}

	amount, err = pricing.Amount(context.Background(), lot, weekday, weekday.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if !approxEqual(amount, 150) {
		t.Fatalf("90 phút @100 phải là 150, nhận được %.2f", amount)
	}
}

func TestAmountMonotonic(t *testing.T) {
	pricing := NewPricingService(newFakeFestivalRepo())
	lot := testLot(100, 1.2, 1.5)
	ctx := context.Background()

	short, err := pricing.Amount(ctx, lot, weekday, weekday.Add(time.Hour))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	long, err := pricing.Amount(ctx, lot, weekday, weekday.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if long <= short {
		t.Fatalf("khoảng dài hơn phải đắt hơn: %.2f <= %.2f", long, short)
	}
}

func TestRateLockedAtStart(t *testing.T) {
	pricing := NewPricingService(newFakeFestivalRepo())
	lot := testLot(100, 1.2, 1.5)

	// Thứ Sáu 23:00 -> thứ Bảy 01:00: đơn giá chốt lúc bắt đầu (ngày thường).
	fridayNight := time.Date(2026, 3, 6, 23, 0, 0, 0, time.UTC)
	amount, err := pricing.Amount(context.Background(), lot, fridayNight, fridayNight.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Amount trả về lỗi: %v", err)
	}
	if !approxEqual(amount, 200) {
		t.Fatalf("đơn giá phải chốt tại thời điểm bắt đầu: muốn 200, nhận được %.2f", amount)
	}
}
