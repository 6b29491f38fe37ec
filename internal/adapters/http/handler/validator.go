package handler

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators は gin のバインディングで利用する独自タグを登録します。
//   - pin: 4〜8 桁の数字
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("handler: unsupported validator engine")
			return
		}
		registerErr = v.RegisterValidation("pin", validatePIN)
	})
	return registerErr
}

func validatePIN(fl validator.FieldLevel) bool {
	return employee.ValidatePIN(fl.Field().String()) == nil
}
