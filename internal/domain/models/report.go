package models

import "time"

// Dashboard is the at-a-glance view of the business for one day.
type Dashboard struct {
	Date           string    `json:"date"`
	Month          string    `json:"month"`
	TotalClients   int       `json:"totalClients"`
	TodayMeals     int       `json:"todayMeals"`
	MonthlyMeals   int       `json:"monthlyMeals"`
	MonthlyIncome  float64   `json:"monthlyIncome"`
	BillsGenerated int       `json:"billsGenerated"`
	GeneratedAt    time.Time `json:"generatedAt"`
}
