package models

// Summary содержит производные показатели одного месяца и их изменение
// по отношению к предыдущему месяцу.
type Summary struct {
	Year    int  `json:"year"`
	Month   int  `json:"month"`
	HasData bool `json:"has_data"`

	TotalRevenue  float64 `json:"total_revenue"`
	FixedCosts    float64 `json:"fixed_costs"`
	VariableCosts float64 `json:"variable_costs"`
	TotalCosts    float64 `json:"total_costs"`
	NetProfit     float64 `json:"net_profit"`
	MarginPercent float64 `json:"margin_percent"`

	Changes *SummaryChanges `json:"changes,omitempty"`
}

// SummaryChanges содержит процентные изменения показателей относительно
// предыдущего месяца. Nil означает, что изменение не определено:
// предыдущего месяца нет либо предыдущее значение равно нулю.
type SummaryChanges struct {
	TotalRevenue  *float64 `json:"total_revenue"`
	FixedCosts    *float64 `json:"fixed_costs"`
	VariableCosts *float64 `json:"variable_costs"`
	NetProfit     *float64 `json:"net_profit"`
	MarginPercent *float64 `json:"margin_percent"`
}

// MonthResult описывает месяц с экстремальной чистой прибылью в окне трендов.
type MonthResult struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	NetProfit float64 `json:"net_profit"`
}

// TrendStats содержит агрегированную статистику за окно трендов.
// При отсутствии записей суммы нулевые, best/worst месяцы равны nil.
type TrendStats struct {
	TotalRevenue float64      `json:"total_revenue"`
	TotalCosts   float64      `json:"total_costs"`
	TotalProfit  float64      `json:"total_profit"`
	AvgMargin    float64      `json:"avg_margin"`
	BestMonth    *MonthResult `json:"best_month"`
	WorstMonth   *MonthResult `json:"worst_month"`
	MonthsCount  int          `json:"months_count"`
}

// MonthPoint — точка помесячного тренда для графиков.
type MonthPoint struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Label         string  `json:"month_name"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalCosts    float64 `json:"total_costs"`
	NetProfit     float64 `json:"net_profit"`
	MarginPercent float64 `json:"margin_percent"`
}

// Period — пара (год, месяц), адресующая одну запись пользователя.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// RevenueVsCosts — разбивка выручки и расходов текущего месяца для графика.
type RevenueVsCosts struct {
	ServicesRevenue float64 `json:"services_revenue"`
	ProductsRevenue float64 `json:"products_revenue"`
	OtherRevenue    float64 `json:"other_revenue"`
	FixedCosts      float64 `json:"fixed_costs"`
	VariableCosts   float64 `json:"variable_costs"`
	NetProfit       float64 `json:"net_profit"`
}

// ChartData объединяет данные дашборда для построения графиков.
type ChartData struct {
	RevenueVsCosts *RevenueVsCosts `json:"revenue_vs_costs"`
	MonthlyTrend   []MonthPoint    `json:"monthly_trend"`
	CurrentPeriod  Period          `json:"current_period"`
}

// ReportJob — сообщение очереди на отправку месячного отчёта по почте.
// Содержит всё необходимое воркеру: получателя, профиль и запись,
// чтобы отрисовать PDF без обращения к базе.
type ReportJob struct {
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	BusinessName string  `json:"business_name"`
	BusinessType string  `json:"business_type"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Record       *Record `json:"record"`
}
