package kernel

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by DistanceKm.
	EarthRadiusKm = 6371.0

	// DefaultDeliveryMinutes is the estimate used when the business states no base time.
	DefaultDeliveryMinutes = 30

	// minutesPerKm is the travel allowance added per kilometre of distance.
	minutesPerKm = 2
)

// DistanceKm returns the great-circle distance in kilometres between two points given
// in decimal degrees, using the Haversine formula. It is pure and deterministic.
//
// Example:
//
//	km := kernel.DistanceKm(6.2092, -75.5676, 6.2425, -75.5894) // ≈ 4.42
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusKm * c
}

// EstimateDeliveryMinutes is the coarse ETA shown when an order is placed:
// baseMinutes + 2 × distanceKm, truncated. A business without a stated base time
// (baseMinutes <= 0) gets DefaultDeliveryMinutes.
func EstimateDeliveryMinutes(baseMinutes int, distanceKm float64) int {
	if baseMinutes <= 0 {
		return DefaultDeliveryMinutes
	}
	return int(float64(baseMinutes) + distanceKm*minutesPerKm)
}

// RoundKm rounds a distance to two decimals for display.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
