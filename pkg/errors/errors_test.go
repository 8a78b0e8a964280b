package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     Code
		expected int
	}{
		{CodeValidationFail, http.StatusBadRequest},
		{CodeConfiguration, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeSolverFault, http.StatusBadGateway},
		{CodeCanceled, 499},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").HTTPStatus; got != tt.expected {
				t.Errorf("HTTPStatus = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("底层错误")
	err := Wrap(cause, CodeSolverFault, "求解失败")

	if !stderrors.Is(err, cause) {
		t.Error("Wrap 应保留原因")
	}
	if err.Error() != "[SOLVER_FAULT] 求解失败: 底层错误" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := fmt.Errorf("外层: %w", err)
	if !Is(wrapped, CodeSolverFault) {
		t.Error("Is 应穿透 fmt.Errorf 包装")
	}
	if GetCode(wrapped) != CodeSolverFault {
		t.Errorf("GetCode = %s", GetCode(wrapped))
	}
	if GetHTTPStatus(wrapped) != http.StatusBadGateway {
		t.Errorf("GetHTTPStatus = %d", GetHTTPStatus(wrapped))
	}
}

func TestGetCode_Plain(t *testing.T) {
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Error("非 AppError 应返回 UNKNOWN")
	}
	if GetHTTPStatus(stderrors.New("plain")) != http.StatusInternalServerError {
		t.Error("非 AppError 应返回 500")
	}
}

func TestOuterCodeWins(t *testing.T) {
	inner := Validation("schedule", "尺寸不符")
	outer := Wrap(inner, CodeInternal, "复核失败")
	if GetCode(outer) != CodeInternal {
		t.Errorf("GetCode = %s, expected INTERNAL_ERROR", GetCode(outer))
	}
	if !Is(outer, CodeInternal) {
		t.Error("Is 应匹配外层错误码")
	}
}

func TestValidation(t *testing.T) {
	err := Validation("workers", "员工列表不能为空")
	if err.Code != CodeValidationFail {
		t.Errorf("Code = %s", err.Code)
	}
	if err.Fields["workers"] != "员工列表不能为空" {
		t.Errorf("Fields = %v", err.Fields)
	}
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	if ve.HasErrors() {
		t.Error("空集合不应有错误")
	}

	ve.Add("NumDays", "NumDays必须大于或等于1")
	ve.Add("CoveragePerSlot", "CoveragePerSlot必须大于或等于1")

	appErr := ve.ToAppError()
	if appErr.Code != CodeValidationFail {
		t.Errorf("Code = %s", appErr.Code)
	}
	if len(appErr.Fields) != 2 {
		t.Errorf("Fields = %v", appErr.Fields)
	}
	if appErr.Message != "验证失败: NumDays - NumDays必须大于或等于1" {
		t.Errorf("Message = %q", appErr.Message)
	}
}
