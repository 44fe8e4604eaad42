// Package period содержит календарную арифметику по месяцам.
// Все вычисления явные, без парсинга строк и без привязки к часовому поясу.
package period

import "time"

// Prev возвращает предыдущий календарный месяц с переходом через год:
// январь откатывается на декабрь предыдущего года.
func Prev(year, month int) (int, int) {
	month--
	if month == 0 {
		month = 12
		year--
	}
	return year, month
}

// Distance считает расстояние между периодами в календарных месяцах:
// положительное значение означает, что (fromYear, fromMonth) раньше (toYear, toMonth).
func Distance(fromYear, fromMonth, toYear, toMonth int) int {
	return (toYear-fromYear)*12 + (toMonth - fromMonth)
}

// Label возвращает короткую подпись периода для графиков, например "Jan 2025".
func Label(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// Start возвращает первый день месяца в UTC.
func Start(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}
