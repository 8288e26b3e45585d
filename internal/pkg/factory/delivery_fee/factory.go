package delivery_fee

import (
	"math"
	"time"

	"gathr/internal/pkg/config"
	"gathr/pkg/geo"
)

// minETA - нижняя граница оценки, чтобы клиент не видел "0 минут" у самой двери.
const minETA = time.Minute

// FeeFactory - тарифная политика доставки. Все параметры из конфигурации,
// смена тарифа не требует изменения кода.
type FeeFactory struct {
	baseKm      float64
	baseFee     int64
	perKmFee    int64
	avgSpeedKmh float64
}

func New(cfg config.Pricing) *FeeFactory {
	return &FeeFactory{
		baseKm:      cfg.BaseKm,
		baseFee:     cfg.BaseFee,
		perKmFee:    cfg.PerKmFee,
		avgSpeedKmh: cfg.AvgSpeedKmh,
	}
}

func (f *FeeFactory) CalculateFee(distanceKm float64) int64 {
	return geo.DeliveryFee(distanceKm, f.baseKm, f.baseFee, f.perKmFee)
}

func (f *FeeFactory) CalculateETA(distanceKm float64) time.Duration {
	if f.avgSpeedKmh <= 0 || distanceKm <= 0 {
		return minETA
	}
	hours := distanceKm / f.avgSpeedKmh
	eta := time.Duration(math.Ceil(hours * float64(time.Hour)))
	if eta < minETA {
		return minETA
	}
	return eta.Round(time.Second)
}
