package models

import "time"

// ClientSnapshot is the denormalized copy of a client stored inside a bill.
type ClientSnapshot struct {
	ID         string  `bson:"_id" json:"id"`
	Name       string  `bson:"name" json:"name"`
	Mobile     string  `bson:"mobile" json:"mobile"`
	LunchCost  float64 `bson:"lunchCost" json:"lunchCost"`
	DinnerCost float64 `bson:"dinnerCost" json:"dinnerCost"`
	Discount   float64 `bson:"discount" json:"discount"`
}

// BillSummary is the monthly bill of one client. Once persisted it is never
// modified; at most one exists per (client, month).
type BillSummary struct {
	ID                string         `bson:"_id,omitempty" json:"id,omitempty"`
	Client            ClientSnapshot `bson:"client" json:"client"`
	Month             string         `bson:"month" json:"month"`
	LunchDays         int            `bson:"lunchDays" json:"lunchDays"`
	DinnerDays        int            `bson:"dinnerDays" json:"dinnerDays"`
	LunchQuantity     int            `bson:"lunchQuantity" json:"lunchQuantity"`
	DinnerQuantity    int            `bson:"dinnerQuantity" json:"dinnerQuantity"`
	LunchTotal        float64        `bson:"lunchTotal" json:"lunchTotal"`
	DinnerTotal       float64        `bson:"dinnerTotal" json:"dinnerTotal"`
	Subtotal          float64        `bson:"subtotal" json:"subtotal"`
	DiscountAmount    float64        `bson:"discountAmount" json:"discountAmount"`
	GrandTotal        float64        `bson:"grandTotal" json:"grandTotal"`
	AttendanceRecords []string       `bson:"attendanceRecords" json:"attendanceRecords"`
	GeneratedAt       time.Time      `bson:"generatedAt,omitempty" json:"generatedAt,omitempty"`
}

// TotalMeals is the number of billed meal units.
func (b BillSummary) TotalMeals() int {
	return b.LunchQuantity + b.DinnerQuantity
}

// MonthlyTotals aggregates bills of many clients for one month.
type MonthlyTotals struct {
	Month       string  `json:"month"`
	TotalMeals  int     `json:"totalMeals"`
	TotalIncome float64 `json:"totalIncome"`
}
