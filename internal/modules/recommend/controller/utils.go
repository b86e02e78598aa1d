package controller

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ebitech02/WanderWise/internal/climate"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("continent", func(fl validator.FieldLevel) bool {
		_, ok := types.LookupContinent(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("climate", func(fl validator.FieldLevel) bool {
		_, err := climate.ParseLabel(fl.Field().String())
		return err == nil
	})
	return v
}

func continentNames() []string {
	cs := types.Continents()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func climateNames() []string {
	labels := climate.Selectable()
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.String()
	}
	return out
}

// parsePreferences validates the continent and climate inputs and resolves
// them to their canonical values.
func parsePreferences(continent, climateName string) (types.Continent, climate.Label, error) {
	prefs := types.Preferences{
		Continent: strings.TrimSpace(continent),
		Climate:   strings.TrimSpace(climateName),
	}
	if err := validate.Struct(prefs); err != nil {
		return types.Continent{}, climate.Unknown, describeValidation(err)
	}

	c, _ := types.LookupContinent(prefs.Continent)
	label, err := climate.ParseLabel(prefs.Climate)
	if err != nil {
		return types.Continent{}, climate.Unknown, err
	}
	return c, label, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "continent":
			msgs = append(msgs, fmt.Sprintf("continent %q is not one of: %s", fe.Value(), strings.Join(continentNames(), ", ")))
		case "climate":
			msgs = append(msgs, fmt.Sprintf("climate %q is not one of: %s", fe.Value(), strings.Join(climateNames(), ", ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
