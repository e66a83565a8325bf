package httpapi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// cityNamePattern accepts letters of any script, spaces and hyphens.
var cityNamePattern = regexp.MustCompile(`^[\p{L}\s-]+$`)

// broadQueries are countries and regions people type instead of a city.
var broadQueries = map[string]struct{}{}

func init() {
	for _, q := range []string{
		"россия", "украина", "белоруссия", "беларусь", "казахстан", "узбекистан",
		"сша", "соединенные штаты", "великобритания", "англия", "германия", "франция",
		"италия", "испания", "китай", "япония", "австралия", "бразилия", "индия",
		"сибирь", "урал", "кавказ", "восточная европа", "западная европа", "африка",
		"азия", "америка", "евразия",
		"russia", "ukraine", "belarus", "kazakhstan", "uzbekistan",
		"usa", "united states", "united kingdom", "england", "germany", "france",
		"italy", "spain", "china", "japan", "australia", "brazil", "india",
		"siberia", "ural", "caucasus", "eastern europe", "western europe", "africa",
		"asia", "america", "eurasia", "europe",
	} {
		broadQueries[q] = struct{}{}
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("cityname", validateCityName); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(validateLocationQuery, locationQuery{})
	return v
}

// validateLocationQuery requires a city or a complete coordinate pair.
func validateLocationQuery(sl validator.StructLevel) {
	q := sl.Current().Interface().(locationQuery)
	if (q.Lat == nil) != (q.Lon == nil) {
		sl.ReportError(q.Lat, "Lat", "Lat", "latlon", "")
		return
	}
	if q.City == "" && q.Lat == nil {
		sl.ReportError(q.City, "City", "City", "required", "")
	}
}

// validateCityName rejects queries that are not a specific city.
func validateCityName(fl validator.FieldLevel) bool {
	q := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	if q == "" || !cityNamePattern.MatchString(q) {
		return false
	}
	_, broad := broadQueries[strings.Join(strings.Fields(q), " ")]
	return !broad
}

// validationMessage turns validator errors into a short client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "latlon":
			msgs = append(msgs, "lat and lon must be given together")
		case "cityname":
			msgs = append(msgs, "city must be a specific city name, not a country or region")
		case "required", "required_without", "required_with":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min", "max", "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s is out of range", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
