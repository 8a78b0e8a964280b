// Package model 定义排班引擎的核心数据模型
package model

import "fmt"

// Slot 时段（某天的某个班次）
type Slot struct {
	Day   int `json:"day" yaml:"day"`
	Shift int `json:"shift" yaml:"shift"`
}

// String 返回时段的可读形式
func (s Slot) String() string {
	return fmt.Sprintf("d%d/s%d", s.Day, s.Shift)
}

// Less 按天、班次排序
func (s Slot) Less(other Slot) bool {
	if s.Day != other.Day {
		return s.Day < other.Day
	}
	return s.Shift < other.Shift
}
