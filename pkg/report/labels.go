package report

import "fmt"

var weekdays = []string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// DayLabel 返回天的名称，按周循环
func DayLabel(day int) string {
	if day < 0 {
		return fmt.Sprintf("第%d天", day)
	}
	return weekdays[day%len(weekdays)]
}

// ShiftLabel 返回班次名称
//
// 两班制为早班/晚班，三班制为早班/中班/夜班，其余用序号。
func ShiftLabel(shift, numShifts int) string {
	switch {
	case numShifts == 2 && shift >= 0 && shift < 2:
		return []string{"早班", "晚班"}[shift]
	case numShifts == 3 && shift >= 0 && shift < 3:
		return []string{"早班", "中班", "夜班"}[shift]
	default:
		return fmt.Sprintf("班次%d", shift)
	}
}

// SlotLabel 返回时段名称，如 "周一 晚班"
func SlotLabel(day, shift, numShifts int) string {
	return DayLabel(day) + " " + ShiftLabel(shift, numShifts)
}
