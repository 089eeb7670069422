package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"zencms/core/apperr"
	"zencms/model"

	"github.com/go-playground/validator/v10"
)

// Validator 封装 validator/v10，把校验失败转换为 ValidationError
type Validator struct {
	v *validator.Validate
}

var (
	defaultValidator *Validator
	validatorOnce    sync.Once
)

// DefaultValidator 返回进程内共享的校验器
func DefaultValidator() *Validator {
	validatorOnce.Do(func() {
		defaultValidator = NewValidator()
	})
	return defaultValidator
}

// NewValidator 创建校验器，错误信息使用 JSON 字段名
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// clock 校验 HH:mm
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := model.ParseClock(fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// Validate 校验结构体
func (v *Validator) Validate(s interface{}) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperr.Validation("%v", err)
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s %s", fieldPath(e), friendlyMessage(e)))
	}
	sort.Strings(messages)
	return apperr.Validation("%s", strings.Join(messages, "; "))
}

// fieldPath 去掉顶层结构体名，保留 ids[0] 这样的路径
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "unique":
		return "must not contain duplicates"
	case "clock":
		return "must be a time in HH:mm format"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
