package services

import (
	"fmt"
	"reflect"
	"strings"

	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Detail keys use the JSON names callers sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterStructValidation(priceScale, models.CreateProductRequest{}, models.ProductPatch{})
	return v
}

// priceDecimals is the scale of the stored price column.
const priceDecimals = 2

// priceScale rejects prices the store would have to round.
func priceScale(sl validator.StructLevel) {
	var price *decimal.Decimal
	switch req := sl.Current().Interface().(type) {
	case models.CreateProductRequest:
		price = &req.Price
	case models.ProductPatch:
		price = req.Price
	}
	if price != nil && !price.Equal(price.Round(priceDecimals)) {
		sl.ReportError(*price, "price", "Price", "decimals", fmt.Sprint(priceDecimals))
	}
}

// validateStruct runs the struct tags on s and collects failures per field.
func validateStruct(s interface{}) *Error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return validationError("Validation failed", map[string][]string{"body": {err.Error()}})
	}

	details := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = append(details[fe.Field()], fieldMessage(fe))
	}
	return validationError("Validation failed", details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s field must be at most %s characters.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("The %s field must be at least %s.", fe.Field(), fe.Param())
	case "decimals":
		return fmt.Sprintf("The %s field must have at most %s decimal places.", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s field must be one of: %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}
