package matching

import (
	"fmt"
	"strings"

	"github.com/rent-home/service-matching/internal/domain/apartment"
	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
)

const (
	convenientMinutes = 30
	acceptableMinutes = 45
	greatValueMargin  = 500
)

// Recommend builds the candidate's summary line from commute, price and distance.
func Recommend(apt *apartment.Apartment, result commuteDomain.Result, budget int) string {
	parts := make([]string, 0, 4)

	d := result.DurationMinutes
	switch {
	case d <= convenientMinutes:
		parts = append(parts, fmt.Sprintf("通勤时间仅%d分钟，非常便利", d))
	case d <= acceptableMinutes:
		parts = append(parts, fmt.Sprintf("通勤时间%d分钟，在可接受范围内", d))
	default:
		parts = append(parts, fmt.Sprintf("通勤时间%d分钟", d))
	}

	diff := budget - apt.MinPrice()
	switch {
	case diff > greatValueMargin:
		parts = append(parts, fmt.Sprintf("价格%d元起，比预算低%d元，性价比高", apt.MinPrice(), diff))
	case diff > 0:
		parts = append(parts, fmt.Sprintf("价格%d元起，在预算范围内", apt.MinPrice()))
	default:
		parts = append(parts, fmt.Sprintf("价格%d元起", apt.MinPrice()))
	}

	if result.DistanceMeters > 0 {
		parts = append(parts, fmt.Sprintf("距离约%.1f公里", result.DistanceMeters/1000))
	}

	if apt.HasPriceRange() {
		parts = append(parts, fmt.Sprintf("租金范围：%d-%d元", apt.MinPrice(), apt.MaxPrice()))
	}

	return strings.Join(parts, "；")
}
