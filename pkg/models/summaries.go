package models

import "time"

/*
COMPUTE → summary tables produced by the aggregation engine.
*/

// DailySummary is one calendar day of orders.
type DailySummary struct {
	Date            string  `json:"date"` // YYYY-MM-DD
	Orders          int     `json:"orders"`
	Revenue         float64 `json:"revenue"`
	Tickets         int     `json:"tickets"`
	UniqueCustomers int     `json:"unique_customers"`
}

// WeeklySummary is one ISO week of orders.
type WeeklySummary struct {
	Year            int     `json:"year"`
	Week            int     `json:"week"`
	WeekStart       string  `json:"week_start"` // Monday, YYYY-MM-DD
	Orders          int     `json:"orders"`
	Revenue         float64 `json:"revenue"`
	Tickets         int     `json:"tickets"`
	UniqueCustomers int     `json:"unique_customers"`
}

// ShowSummary describes one performance, keyed by event date and weekday tag.
type ShowSummary struct {
	ShowID             string  `json:"show_id"`
	EventDate          string  `json:"event_date"`
	DayOfWeek          string  `json:"day_of_week"`
	EventName          string  `json:"event_name"`
	Orders             int     `json:"orders"`
	Tickets            int     `json:"tickets"`
	Revenue            float64 `json:"revenue"`
	UniqueCustomers    int     `json:"unique_customers"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	TicketsPerOrder    float64 `json:"tickets_per_order"`
	AvgDaysBefore      float64 `json:"avg_days_before"`
	SameDayPurchases   int     `json:"same_day_purchases"`
	SameDayRate        float64 `json:"same_day_rate"`
	AdvancePurchases   int     `json:"advance_purchases"`
	AdvanceRate        float64 `json:"advance_rate"`
	RepeatCustomers    int     `json:"repeat_customers"`
	RepeatRate         float64 `json:"repeat_rate"`
	FreeTickets        int     `json:"free_tickets"`
	FreeRate           float64 `json:"free_rate"`
	PaidTickets        int     `json:"paid_tickets"`
	TopState           string  `json:"top_state"`
	StateConcentration float64 `json:"state_concentration"`
}

// CustomerSummary aggregates every order of one customer.
type CustomerSummary struct {
	CustomerID    string      `json:"customer_id"`
	TotalOrders   int         `json:"total_orders"`
	TotalTickets  int         `json:"total_tickets"`
	TotalSpent    float64     `json:"total_spent"`
	FirstOrder    time.Time   `json:"first_order"`
	LastOrder     time.Time   `json:"last_order"`
	DaysAttended  []string    `json:"days_attended"`
	UniqueEvents  int         `json:"unique_events"`
	State         string      `json:"state"`
	City          string      `json:"city"`
	LifetimeDays  int         `json:"lifetime_days"`
	AvgOrderValue float64     `json:"avg_order_value"`
	DaysVariety   int         `json:"days_variety"`
	OrderDates    []time.Time `json:"order_dates,omitempty"`
}

// BookingWindowSummary groups orders by how far ahead of the show they were placed.
type BookingWindowSummary struct {
	Window        string  `json:"window"`
	Orders        int     `json:"orders"`
	Tickets       int     `json:"tickets"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// CountRow is one entry of a frequency table.
type CountRow struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PaymentSummary groups orders by payment type.
type PaymentSummary struct {
	PaymentType     string  `json:"payment_type"`
	Orders          int     `json:"orders"`
	Tickets         int     `json:"tickets"`
	Revenue         float64 `json:"revenue"`
	UniqueCustomers int     `json:"unique_customers"`
	Share           float64 `json:"share"`
	AvgOrderValue   float64 `json:"avg_order_value"`
}

// DayPerformance groups orders by weekday tag.
type DayPerformance struct {
	DayOfWeek         string  `json:"day_of_week"`
	Orders            int     `json:"orders"`
	Tickets           int     `json:"tickets"`
	Revenue           float64 `json:"revenue"`
	Shows             int     `json:"shows"`
	AvgOrdersPerShow  float64 `json:"avg_orders_per_show"`
	AvgRevenuePerShow float64 `json:"avg_revenue_per_show"`
}

// MonthSummary groups orders by event month (1-12).
type MonthSummary struct {
	Month   int     `json:"month"`
	Orders  int     `json:"orders"`
	Tickets int     `json:"tickets"`
	Revenue float64 `json:"revenue"`
}

// AcquisitionSummary splits customers into new (one order) and returning.
type AcquisitionSummary struct {
	CustomerType string  `json:"customer_type"`
	Customers    int     `json:"customers"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
}

// ShowChange is one show in a week-over-week series for a weekday.
type ShowChange struct {
	EventDate       string   `json:"event_date"`
	Year            int      `json:"year"`
	Week            int      `json:"week"`
	Orders          int      `json:"orders"`
	Tickets         int      `json:"tickets"`
	Revenue         float64  `json:"revenue"`
	UniqueCustomers int      `json:"unique_customers"`
	AvgDaysBefore   float64  `json:"avg_days_before"`
	OrdersChange    *float64 `json:"orders_change"`
	RevenueChange   *float64 `json:"revenue_change"`
	TicketsChange   *float64 `json:"tickets_change"`
}

// WeekOverWeek is the show series of one weekday with its mean growth.
type WeekOverWeek struct {
	DayOfWeek        string       `json:"day_of_week"`
	Shows            []ShowChange `json:"shows"`
	AvgOrderGrowth   float64      `json:"avg_order_growth"`
	AvgRevenueGrowth float64      `json:"avg_revenue_growth"`
}

// HeatmapCell is the order count for one ISO week and weekday tag.
type HeatmapCell struct {
	Week      int    `json:"week"`
	DayOfWeek string `json:"day_of_week"`
	Orders    int    `json:"orders"`
}

/*
RESULTS → everything one analysis run produces.
*/

// Headline holds the overview and purchase-timing figures of the batch report.
type Headline struct {
	TotalOrders          int     `json:"total_orders"`
	TotalTickets         int     `json:"total_tickets"`
	TotalRevenue         float64 `json:"total_revenue"`
	UniqueCustomers      int     `json:"unique_customers"`
	AvgOrderValue        float64 `json:"avg_order_value"`
	AvgDaysBeforeEvent   float64 `json:"avg_days_before_event"`
	SameDayPurchases     int     `json:"same_day_purchases"`
	LastMinutePurchases  int     `json:"last_minute_purchases"`
	AdvancePurchases     int     `json:"advance_purchases"`
	PeakHour             *int    `json:"peak_hour"`
	ReturningRate        float64 `json:"returning_customer_rate"`
	RepeatCustomers      int     `json:"repeat_customers"`
	RepeatRate           float64 `json:"repeat_customer_rate"`
	AvgOrdersPerCustomer float64 `json:"avg_orders_per_customer"`
}

// Analysis is the full in-memory result of one run.
type Analysis struct {
	Headline       Headline
	Daily          []DailySummary
	Weekly         []WeeklySummary
	Shows          []ShowSummary
	Customers      []CustomerSummary
	BookingWindows []BookingWindowSummary
	Payments       []PaymentSummary
	TopStates      []CountRow
	TopCities      []CountRow
	OrdersByDay    []CountRow
	Hourly         map[int]int
	Quantities     map[int]int
	DayPerformance []DayPerformance
	Seasonal       []MonthSummary
	Acquisition    []AcquisitionSummary
}

// Snapshot is the JSON file written by the batch report and read by the dashboard.
type Snapshot struct {
	RunID           string                 `json:"run_id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Fingerprint     string                 `json:"fingerprint"`
	Window          string                 `json:"window,omitempty"`
	Headline        Headline               `json:"headline"`
	Hourly          map[int]int            `json:"hourly_distribution"`
	OrdersByDay     []CountRow             `json:"orders_by_day"`
	TopStates       []CountRow             `json:"top_states"`
	TopCities       []CountRow             `json:"top_cities"`
	Payments        []PaymentSummary       `json:"payment_methods"`
	Quantities      map[int]int            `json:"ticket_quantities"`
	BookingWindows  []BookingWindowSummary `json:"booking_windows"`
	DayPerformance  []DayPerformance       `json:"day_performance"`
	Seasonal        []MonthSummary         `json:"seasonal"`
	Acquisition     []AcquisitionSummary   `json:"acquisition"`
	Shows           []ShowSummary          `json:"individual_shows"`
	Recommendations []string               `json:"recommendations"`
}
