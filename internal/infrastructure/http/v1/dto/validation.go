package dto

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"retailpos/internal/domain/identifier"
)

var registerOnce sync.Once

// RegisterValidators adds the identifier tags to gin's validator:
//
//	commonid - a well-formed common id (CAM-1001)
//	uniqueid - a formatted unique id with a suffix segment (CAM-1001-7QX2)
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("commonid", validateCommonID); err != nil {
			return
		}
		err = v.RegisterValidation("uniqueid", validateUniqueID)
	})
	return err
}

func validateCommonID(fl validator.FieldLevel) bool {
	return identifier.ValidateCommonID(fl.Field().String()).Valid
}

func validateUniqueID(fl validator.FieldLevel) bool {
	formatted := identifier.FormatUniqueID(fl.Field().String())
	if formatted == "" || len(formatted) > identifier.MaxUniqueIDLength {
		return false
	}
	return len(strings.Split(formatted, identifier.Separator)) >= 2
}
