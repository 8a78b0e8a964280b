package model

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
)

// ScheduleParameters 排班参数
type ScheduleParameters struct {
	NumDays            int  `json:"num_days" yaml:"num_days" validate:"min=1,max=366"`
	NumShiftsPerDay    int  `json:"num_shifts_per_day" yaml:"num_shifts_per_day" validate:"min=1,max=24"`
	CoveragePerSlot    int  `json:"coverage_per_slot" yaml:"coverage_per_slot" validate:"min=1"`
	MinShiftsPerWorker int  `json:"min_shifts_per_worker" yaml:"min_shifts_per_worker" validate:"min=0"`
	MaxShiftsPerWorker *int `json:"max_shifts_per_worker,omitempty" yaml:"max_shifts_per_worker,omitempty" validate:"omitempty,min=0"`
	OneShiftPerDay     bool `json:"one_shift_per_day" yaml:"one_shift_per_day"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// Validator 返回带中文翻译的校验器
func Validator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		locale := zh.New()
		uni := ut.New(locale, locale)
		translator, _ = uni.GetTranslator("zh")
		_ = zh_translations.RegisterDefaultTranslations(validate, translator)
	})
	return validate, translator
}

// ValidateStruct 校验结构体字段，返回 VALIDATION_FAILED 错误
func ValidateStruct(v interface{}) error {
	val, trans := Validator()
	err := val.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, apperrors.CodeValidationFail, "校验失败")
	}
	ve := &apperrors.ValidationErrors{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Namespace(), fe.Translate(trans))
	}
	return ve.ToAppError()
}

// IntPtr 返回整数指针
func IntPtr(v int) *int {
	return &v
}

// NumSlots 时段总数 D*S
func (p *ScheduleParameters) NumSlots() int {
	return p.NumDays * p.NumShiftsPerDay
}

// Demand 总需求人次 K*D*S
func (p *ScheduleParameters) Demand() int {
	return p.CoveragePerSlot * p.NumSlots()
}

// HasMax 是否配置了最大负荷
func (p *ScheduleParameters) HasMax() bool {
	return p.MaxShiftsPerWorker != nil
}

// Capacity 单个员工物理上能承担的最大班次数
func (p *ScheduleParameters) Capacity() int {
	if p.OneShiftPerDay {
		return p.NumDays
	}
	return p.NumSlots()
}

// EffectiveMax 最大负荷，未配置时取物理上限，配置值不超过时段总数
func (p *ScheduleParameters) EffectiveMax() int {
	if p.MaxShiftsPerWorker != nil {
		return min(*p.MaxShiftsPerWorker, p.NumSlots())
	}
	return p.Capacity()
}

// Validate 校验参数字段
func (p *ScheduleParameters) Validate() error {
	if err := ValidateStruct(p); err != nil {
		return err
	}
	if p.MaxShiftsPerWorker != nil && *p.MaxShiftsPerWorker < p.MinShiftsPerWorker {
		return apperrors.Configuration(fmt.Sprintf("最大负荷 %d 小于最小负荷 %d",
			*p.MaxShiftsPerWorker, p.MinShiftsPerWorker))
	}
	return nil
}

// CheckCapacity 校验 W*max >= K*D*S >= W*min
func (p *ScheduleParameters) CheckCapacity(numWorkers int) error {
	// 以下两项是容量不等式的特例，先判断以免乘法溢出
	if p.CoveragePerSlot > numWorkers {
		return apperrors.Configuration(fmt.Sprintf("每个时段需要 %d 人，但只有 %d 名员工",
			p.CoveragePerSlot, numWorkers)).
			WithField("coverage", p.CoveragePerSlot).
			WithField("workers", numWorkers)
	}
	if p.MinShiftsPerWorker > p.NumSlots() {
		return apperrors.Configuration(fmt.Sprintf("最小负荷 %d 超过时段总数 %d",
			p.MinShiftsPerWorker, p.NumSlots())).
			WithField("minimum", p.MinShiftsPerWorker)
	}
	demand := p.Demand()
	upper := numWorkers * p.EffectiveMax()
	lower := numWorkers * p.MinShiftsPerWorker
	if upper < demand {
		return apperrors.Configuration(fmt.Sprintf("总需求 %d 超过员工最大负荷之和 %d (%d 人 x %d)",
			demand, upper, numWorkers, p.EffectiveMax())).
			WithField("demand", demand).
			WithField("capacity", upper)
	}
	if lower > demand {
		return apperrors.Configuration(fmt.Sprintf("员工最小负荷之和 %d 超过总需求 %d (%d 人 x %d)",
			lower, demand, numWorkers, p.MinShiftsPerWorker)).
			WithField("demand", demand).
			WithField("minimum", lower)
	}
	return nil
}

// FairParameters 按公平策略推导负荷上下限
//
// min = floor(K*D*S / W)，有余数时 max = min+1，否则 max = min。
func FairParameters(numDays, numShifts, coverage, numWorkers int, oneShiftPerDay bool) (*ScheduleParameters, error) {
	if numWorkers < 1 {
		return nil, apperrors.Validation("workers", "员工人数必须大于0")
	}
	p := &ScheduleParameters{
		NumDays:         numDays,
		NumShiftsPerDay: numShifts,
		CoveragePerSlot: coverage,
		OneShiftPerDay:  oneShiftPerDay,
	}
	if err := ValidateStruct(p); err != nil {
		return nil, err
	}
	total := p.Demand()
	p.MinShiftsPerWorker = total / numWorkers
	maxLoad := p.MinShiftsPerWorker
	if total%numWorkers != 0 {
		maxLoad++
	}
	p.MaxShiftsPerWorker = &maxLoad
	return p, nil
}
