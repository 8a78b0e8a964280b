// Package collect 终端勾选表单：录入一名员工不希望上班的时段
//
// 每个 (天, 班次) 一个复选框，勾选表示不希望被安排。
package collect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/paiban/shiftsat/pkg/errors"
	"github.com/paiban/shiftsat/pkg/model"
	"github.com/paiban/shiftsat/pkg/report"
)

type stage int

const (
	stageName stage = iota
	stageGrid
	stageDone
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6BCB77")).MarginBottom(1)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// Model 单个员工的偏好表单
type Model struct {
	numDays   int
	numShifts int

	name     textinput.Model
	unwanted [][]bool
	day      int
	shift    int

	stage    stage
	canceled bool
	errMsg   string
	index    int // 第几个员工，仅用于标题

	keys KeyMap
	help help.Model
}

// New 创建表单，index 从 0 开始
func New(params model.ScheduleParameters, index int) Model {
	ti := textinput.New()
	ti.Placeholder = "员工姓名"
	ti.CharLimit = 64
	ti.Focus()

	unwanted := make([][]bool, params.NumDays)
	for d := range unwanted {
		unwanted[d] = make([]bool, params.NumShiftsPerDay)
	}

	return Model{
		numDays:   params.NumDays,
		numShifts: params.NumShiftsPerDay,
		name:      ti,
		unwanted:  unwanted,
		index:     index,
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update 实现 tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.stage == stageName {
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.Quit) {
		m.canceled = true
		return m, tea.Quit
	}

	switch m.stage {
	case stageName:
		return m.updateName(keyMsg)
	case stageGrid:
		return m.updateGrid(keyMsg)
	}
	return m, nil
}

func (m Model) updateName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		if strings.TrimSpace(m.name.Value()) == "" {
			m.errMsg = "姓名不能为空"
			return m, nil
		}
		m.errMsg = ""
		m.name.Blur()
		m.stage = stageGrid
		return m, nil
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.day > 0 {
			m.day--
		}
	case key.Matches(msg, m.keys.Down):
		if m.day < m.numDays-1 {
			m.day++
		}
	case key.Matches(msg, m.keys.Left):
		if m.shift > 0 {
			m.shift--
		}
	case key.Matches(msg, m.keys.Right):
		if m.shift < m.numShifts-1 {
			m.shift++
		}
	case key.Matches(msg, m.keys.Toggle):
		m.unwanted[m.day][m.shift] = !m.unwanted[m.day][m.shift]
	case key.Matches(msg, m.keys.Submit):
		m.stage = stageDone
		return m, tea.Quit
	}
	return m, nil
}

// View 实现 tea.Model
func (m Model) View() string {
	if m.stage == stageDone || m.canceled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("员工 %d：勾选不希望上班的时段", m.index)))
	b.WriteString("\n")

	if m.stage == stageName {
		b.WriteString("姓名: ")
		b.WriteString(m.name.View())
		b.WriteString("\n")
		if m.errMsg != "" {
			b.WriteString(errorStyle.Render(m.errMsg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Submit, m.keys.Quit}))
		return b.String()
	}

	fmt.Fprintf(&b, "姓名: %s\n\n", strings.TrimSpace(m.name.Value()))
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderGrid 以天为行、班次为列绘制复选框
func (m Model) renderGrid() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s", "")))
	for s := 0; s < m.numShifts; s++ {
		b.WriteString(headerStyle.Render(fmt.Sprintf(" %-6s", report.ShiftLabel(s, m.numShifts))))
	}
	b.WriteString("\n")

	for d := 0; d < m.numDays; d++ {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s", report.DayLabel(d))))
		for s := 0; s < m.numShifts; s++ {
			cell := "[ ]"
			if m.unwanted[d][s] {
				cell = checkedStyle.Render("[x]")
			}
			if d == m.day && s == m.shift {
				cell = cursorStyle.Render(cell)
			}
			b.WriteString(" " + cell + "    ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Canceled 是否被用户取消
func (m Model) Canceled() bool {
	return m.canceled
}

// Done 是否已提交
func (m Model) Done() bool {
	return m.stage == stageDone
}

// Spec 返回录入结果
func (m Model) Spec() model.WorkerSpec {
	spec := model.WorkerSpec{Name: strings.TrimSpace(m.name.Value())}
	for d := range m.unwanted {
		for s, marked := range m.unwanted[d] {
			if marked {
				spec.UnwantedSlots = append(spec.UnwantedSlots, model.Slot{Day: d, Shift: s})
			}
		}
	}
	return spec
}

// Run 运行表单并返回录入的员工
//
// 用户取消时返回 CANCELED 错误。
func Run(params model.ScheduleParameters, index int, opts ...tea.ProgramOption) (model.WorkerSpec, error) {
	final, err := tea.NewProgram(New(params, index), opts...).Run()
	if err != nil {
		return model.WorkerSpec{}, apperrors.Wrap(err, apperrors.CodeInternal, "表单运行失败")
	}
	m, ok := final.(Model)
	if !ok || m.Canceled() || !m.Done() {
		return model.WorkerSpec{}, apperrors.New(apperrors.CodeCanceled, "已取消录入")
	}
	spec := m.Spec()
	if err := model.ValidateStruct(&spec); err != nil {
		return model.WorkerSpec{}, err
	}
	return spec, nil
}
