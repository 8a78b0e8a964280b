package collect

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/paiban/shiftsat/pkg/model"
)

func params() model.ScheduleParameters {
	return model.ScheduleParameters{NumDays: 3, NumShiftsPerDay: 2, CoveragePerSlot: 1}
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update 返回了 %T", next)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	right = tea.KeyMsg{Type: tea.KeyRight}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestModel_Collect(t *testing.T) {
	m := New(params(), 0)

	m = press(t, m, runes("Alice"), enter)
	if m.stage != stageGrid {
		t.Fatalf("输入姓名后应进入勾选阶段, got %v", m.stage)
	}

	// 勾选 (0,0)、(1,1)，再取消 (1,1) 后勾选 (2,1)
	m = press(t, m,
		runes("x"),
		down, right, runes("x"),
		runes("x"),
		down, runes("x"),
	)
	m = press(t, m, enter)
	if !m.Done() || m.Canceled() {
		t.Fatalf("提交后应完成: done=%v canceled=%v", m.Done(), m.Canceled())
	}

	want := model.WorkerSpec{
		Name:          "Alice",
		UnwantedSlots: []model.Slot{{Day: 0, Shift: 0}, {Day: 2, Shift: 1}},
	}
	if diff := cmp.Diff(want, m.Spec()); diff != "" {
		t.Errorf("Spec() mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_CursorBounds(t *testing.T) {
	m := press(t, New(params(), 0), runes("Bob"), enter)

	m = press(t, m, up, tea.KeyMsg{Type: tea.KeyLeft})
	if m.day != 0 || m.shift != 0 {
		t.Errorf("光标不应越过左上角, got (%d,%d)", m.day, m.shift)
	}

	m = press(t, m, down, down, down, down, right, right, right)
	if m.day != 2 || m.shift != 1 {
		t.Errorf("光标不应越过右下角, got (%d,%d)", m.day, m.shift)
	}
}

func TestModel_EmptyName(t *testing.T) {
	m := press(t, New(params(), 0), runes("   "), enter)
	if m.stage != stageName {
		t.Fatal("空姓名不应进入勾选阶段")
	}
	if m.errMsg == "" {
		t.Error("应提示姓名不能为空")
	}
}

func TestModel_Cancel(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"录入姓名时取消", []tea.KeyMsg{esc}},
		{"勾选时取消", []tea.KeyMsg{runes("Carol"), enter, runes("x"), esc}},
		{"ctrl+c", []tea.KeyMsg{{Type: tea.KeyCtrlC}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, New(params(), 1), tt.keys...)
			if !m.Canceled() || m.Done() {
				t.Errorf("canceled=%v done=%v", m.Canceled(), m.Done())
			}
			if m.View() != "" {
				t.Error("取消后不应再渲染")
			}
		})
	}
}

func TestModel_View(t *testing.T) {
	m := New(params(), 2)
	if v := m.View(); v == "" {
		t.Fatal("姓名阶段应有输出")
	}

	m = press(t, m, runes("Dan"), enter, runes("x"))
	v := m.View()
	for _, want := range []string{"Dan", "早班", "晚班", "[x]"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() 缺少 %q:\n%s", want, v)
		}
	}
}
