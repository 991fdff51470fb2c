package handlers

import (
	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the custom binding rules on gin's validator
// engine. Called once at startup; a failed registration is a startup error.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Fatal("failed to register validation rule", "tag", tag, "error", err)
		}
	}

	mustRegister("trade_type", validateTradeType)
}

// Empty values pass; 'required' covers those.
func validateTradeType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch value {
	case models.TradeTypeBuy, models.TradeTypeSell:
		return true
	default:
		return false
	}
}
