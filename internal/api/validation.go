package api

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/yahyalegrini24/AttendEase/internal/timetable"
)

// custom validation tags
const (
	schoolDayTag = "schoolday"
	timeSlotTag  = "timeslot"
)

var translator ut.Translator

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(schoolDayTag, func(fl validator.FieldLevel) bool {
		return timetable.DayID(fl.Field().String()) != 0
	})
	_ = v.RegisterValidation(timeSlotTag, func(fl validator.FieldLevel) bool {
		return slices.Contains(timetable.TimeSlots, fl.Field().String())
	})

	registerMessage(v, schoolDayTag, "{0} must be a school day (Sunday to Thursday)")
	registerMessage(v, timeSlotTag, "{0} must be one of the fixed time slots")
}

func registerMessage(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		})
}

// bindingMessage turns a binding error into something a client can show.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || translator == nil {
		return "Invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return strings.Join(msgs, "; ")
}
