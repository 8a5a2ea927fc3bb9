package handler

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"shortlink-geo/internal/apperrors"
)

// bindingError 将绑定/校验错误转换为 AppError。
// 字段 msg 标签对应 required 失败，invalid_msg 标签对应其他规则失败
func bindingError(err error, req interface{}) *apperrors.AppError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return apperrors.InvalidRequestErrorDefault()
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for _, e := range validationErrs {
		field, ok := t.FieldByName(e.StructField())
		if !ok {
			continue
		}
		msg := field.Tag.Get("msg")
		if e.Tag() != "required" {
			if invalid := field.Tag.Get("invalid_msg"); invalid != "" {
				msg = invalid
			}
		}
		if msg != "" {
			return apperrors.InvalidRequestError(msg)
		}
	}
	return apperrors.InvalidRequestErrorDefault()
}
