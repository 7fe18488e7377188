package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/roomfinder/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限サイズ。
const maxRequestBodyBytes = 1 << 20

// registrationNumberPattern は学籍番号の形式（例: 22BCE3934）。
var registrationNumberPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{3}[0-9]{4}$`)

// newValidator はリクエスト構造体用のバリデーターを生成する。
// エラー詳細にはJSONのフィールド名を使う。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// regno: 学籍番号
	_ = v.RegisterValidation("regno", func(fl validator.FieldLevel) bool {
		return registrationNumberPattern.MatchString(fl.Field().String())
	})
	return v
}

func jsonEncode(w io.Writer, body any) error {
	return json.NewEncoder(w).Encode(body)
}

// decodeAndValidate はJSONボディを読み込んで検証する。
// 失敗した場合はエラーレスポンスを書き込みfalseを返す。
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return false
	}

	if err := v.Struct(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError(describeValidationError(err)))
		return false
	}
	return true
}

// describeValidationError は検証エラーを "field: rule" 形式の文字列にまとめる。
func describeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

// parseLimit はクエリのlimitを解釈する。未指定は0（サービス側の既定値）を返す。
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return n, nil
}
