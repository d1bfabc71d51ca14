package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SimbaKVis/backend-main/pkg/response"
)

// FieldError 字段级校验错误
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

var registerOnce sync.Once

// RegisterValidators 注册自定义校验规则
// 字段名取 json tag，错误详情与请求体字段保持一致
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// bindJSON 绑定并校验请求体，失败时写入 400 响应
// 返回 false 时调用方直接 return
func bindJSON(c *gin.Context, obj interface{}, message string) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Request body too large")
		return false
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, message, details)
		return false
	}

	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, message, err.Error())
	return false
}

// uuidParam 读取并校验路径中的 UUID 参数
// 只接受 36 位标准形式的 v4，与请求体的 uuid4 规则一致
func uuidParam(c *gin.Context, name, message string) (string, bool) {
	id := c.Param(name)
	if !isUUIDv4(id) {
		response.BadRequest(c, 10001, message)
		return "", false
	}
	return id, true
}

func isUUIDv4(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4 && u.Variant() == uuid.RFC4122
}
