// Package geo содержит чистые функции над координатами: расстояние по Хаверсину,
// проверку радиуса и тарифную формулу стоимости доставки.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusKm - средний радиус Земли (IUGG).
const EarthRadiusKm = 6371.0088

var ErrInvalidCoordinates = errors.New("invalid coordinates")

type Point struct {
	Lat  float64
	Long float64
}

func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Long) || math.IsInf(p.Long, 0) {
		return ErrInvalidCoordinates
	}
	if p.Lat < -90 || p.Lat > 90 || p.Long < -180 || p.Long > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// Distance возвращает расстояние по дуге большого круга в километрах.
func Distance(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLong := toRadians(b.Long - a.Long)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLong/2)*math.Sin(dLong/2)
	// погрешность float может дать h чуть больше 1 для антиподов
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h)), nil
}

func WithinRadius(origin, point Point, radiusKm float64) (bool, error) {
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return false, ErrInvalidCoordinates
	}
	d, err := Distance(origin, point)
	if err != nil {
		return false, err
	}
	return d <= radiusKm, nil
}

// DeliveryFee = baseFee + ceil(max(0, distanceKm - baseKm)) * perKmFee.
// Суммы в минимальных единицах валюты.
func DeliveryFee(distanceKm, baseKm float64, baseFee, perKmFee int64) int64 {
	extra := math.Max(0, distanceKm-baseKm)
	return baseFee + int64(math.Ceil(extra))*perKmFee
}

// BoundingBox - прямоугольник, гарантированно содержащий круг радиуса radiusKm.
// Используется как грубый фильтр на стороне БД перед точной проверкой Distance.
type BoundingBox struct {
	MinLat, MaxLat   float64
	MinLong, MaxLong float64
}

func BoundingBoxAround(center Point, radiusKm float64) (BoundingBox, error) {
	if err := center.Validate(); err != nil {
		return BoundingBox{}, err
	}
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return BoundingBox{}, ErrInvalidCoordinates
	}

	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi
	box := BoundingBox{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
	}

	cosLat := math.Cos(toRadians(center.Lat))
	// у полюсов долгота вырождается, берем весь диапазон
	if cosLat < 1e-6 || box.MinLat == -90 || box.MaxLat == 90 {
		box.MinLong, box.MaxLong = -180, 180
		return box, nil
	}
	dLong := dLat / cosLat
	box.MinLong = center.Long - dLong
	box.MaxLong = center.Long + dLong
	if box.MinLong < -180 || box.MaxLong > 180 {
		// пересечение антимеридиана, фильтр по долготе не применяем
		box.MinLong, box.MaxLong = -180, 180
	}
	return box, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
