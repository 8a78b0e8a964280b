// Package input 读写员工名册文件
package input

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/model"
)

// Format 名册文件格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Roster 员工名册：排班参数与员工偏好
//
// Fair 为 true 时忽略 params 中的负荷上下限，按员工人数平均分配推导。
type Roster struct {
	Params  model.ScheduleParameters `json:"params" yaml:"params"`
	Fair    bool                     `json:"fair,omitempty" yaml:"fair,omitempty"`
	Workers []model.WorkerSpec       `json:"workers" yaml:"workers"`
}

// FormatOf 根据扩展名判断格式，默认 YAML
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode 解析名册，拒绝未知字段
func Decode(r io.Reader, format Format) (*Roster, error) {
	roster := &Roster{}
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(roster)
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(roster)
		if err == io.EOF {
			err = nil
		}
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "名册格式错误")
	}
	return roster, nil
}

// Encode 输出名册
func (r *Roster) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Load 读取名册文件
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, fmt.Sprintf("读取名册 %s 失败", path))
	}
	return Decode(bytes.NewReader(data), FormatOf(path))
}

// LoadOrNew 读取名册文件，文件不存在时返回带默认参数的空名册
func LoadOrNew(path string, defaults model.ScheduleParameters) (*Roster, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Roster{Params: defaults}, nil
	}
	return Load(path)
}

// Save 写入名册文件，先写临时文件再改名
func (r *Roster) Save(path string) error {
	var buf bytes.Buffer
	if err := r.Encode(&buf, FormatOf(path)); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化名册失败")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, fmt.Sprintf("写入名册 %s 失败", path))
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, fmt.Sprintf("写入名册 %s 失败", path))
	}
	return nil
}

// AddWorker 追加或替换同名员工
func (r *Roster) AddWorker(spec model.WorkerSpec) (replaced bool) {
	for i := range r.Workers {
		if r.Workers[i].Name == spec.Name {
			r.Workers[i] = spec
			return true
		}
	}
	r.Workers = append(r.Workers, spec)
	return false
}

// Resolve 校验名册并构建排班输入
func (r *Roster) Resolve() ([]*model.Worker, *model.ScheduleParameters, error) {
	params := r.Params
	if r.Fair {
		fair, err := model.FairParameters(params.NumDays, params.NumShiftsPerDay,
			params.CoveragePerSlot, len(r.Workers), params.OneShiftPerDay)
		if err != nil {
			return nil, nil, err
		}
		params = *fair
	}
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	for i := range r.Workers {
		if err := model.ValidateStruct(&r.Workers[i]); err != nil {
			return nil, nil, err
		}
	}
	workers, err := model.BuildWorkers(r.Workers, &params)
	if err != nil {
		return nil, nil, err
	}
	return workers, &params, nil
}
