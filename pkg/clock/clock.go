// Package clock 提供"今天"的来源，便于测试时固定日期
package clock

import "time"

// Clock 时钟接口
type Clock interface {
	Now() time.Time
}

// System 系统时钟
type System struct{}

// Now 返回当前UTC时间
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed 固定时钟（测试用）
type Fixed struct {
	At time.Time
}

// Now 返回固定时间
func (f Fixed) Now() time.Time {
	return f.At
}

// Today 返回c所在日期的UTC零点
func Today(c Clock) time.Time {
	return TruncateDay(c.Now())
}

// TruncateDay 截断到UTC日期零点
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date 构造UTC日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
