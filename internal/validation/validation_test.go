package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/jobboard/internal/model"
)

type signupInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"password"`
	DisplayName string `json:"displayName" validate:"required,max=255"`
	Role        string `json:"userType" validate:"role"`
}

func TestStruct_Valid(t *testing.T) {
	in := signupInput{Email: "taro@example.com", Password: "pw", DisplayName: "Taro", Role: "applicant"}
	if err := Struct(in); err != nil {
		t.Errorf("Struct returned error: %v", err)
	}
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	in := signupInput{Email: "not-an-email", Password: "", DisplayName: "", Role: "admin"}

	err := Struct(in)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}

	for _, field := range []string{"email", "password", "displayName", "userType"} {
		if _, ok := apiErr.Fields[field]; !ok {
			t.Errorf("Fields should contain %q: %v", field, apiErr.Fields)
		}
	}
}

// TestStruct_PasswordLimitIsBytes はパスワード上限が文字数ではなくバイト数で判定されることを検証する。
func TestStruct_PasswordLimitIsBytes(t *testing.T) {
	// 3バイト文字 × 25 = 75バイト（25文字）
	in := signupInput{Email: "a@example.com", Password: strings.Repeat("あ", 25), DisplayName: "A", Role: "company"}

	err := Struct(in)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("72バイト超のパスワードはエラーになるべき: %v", err)
	}
	if _, ok := apiErr.Fields["password"]; !ok {
		t.Errorf("password field error expected: %v", apiErr.Fields)
	}

	in.Password = strings.Repeat("a", MaxPasswordBytes)
	if err := Struct(in); err != nil {
		t.Errorf("72バイトちょうどは許可されるべき: %v", err)
	}
}
