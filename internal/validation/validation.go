// Package validation はリクエスト入力の検証を提供する。
// go-playground/validatorの結果をフィールド単位の詳細を持つmodel.APIErrorに変換する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/jobboard/internal/model"
)

// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト数。
const MaxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーのフィールド名にはJSONタグ名を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// 文字数ではなくバイト数で上限を判定する（マルチバイト文字対策）
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		n := len(fl.Field().String())
		return n > 0 && n <= MaxPasswordBytes
	})

	v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})

	return v
}

// Struct は構造体のvalidateタグに従って検証する。
// 検証エラーの場合はVALIDATION_FAILEDのmodel.APIErrorを返す。
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return model.NewValidationError(fields)
}

// message は検証エラーをユーザー向けメッセージに変換する。
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必須項目です。"
	case "email":
		return "メールアドレスの形式が正しくありません。"
	case "max":
		return fmt.Sprintf("%s文字以内で入力してください。", fe.Param())
	case "password":
		return fmt.Sprintf("パスワードは1〜%dバイトで入力してください。", MaxPasswordBytes)
	case "role", "oneof":
		return "ユーザー種別は applicant または company を指定してください。"
	default:
		return "入力値が不正です。"
	}
}
