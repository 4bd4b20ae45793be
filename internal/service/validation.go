package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/navmenu-api/internal/models"
	appErrors "github.com/noah-isme/navmenu-api/pkg/errors"
)

// NewValidator builds the validator shared by the configuration services,
// with enum validations for every declared member set and json tag names so
// field errors match the wire payload.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enums := map[string][]string{
		"menumode":     {string(models.MenuModeSubmenu), string(models.MenuModeInline)},
		"menutype":     {string(models.MenuTypeList), string(models.MenuTypeCard)},
		"cardsize":     {string(models.CardSizeTiny), string(models.CardSizeSmall), string(models.CardSizeMedium), string(models.CardSizeLarge)},
		"cardform":     {string(models.CardFormSquare), string(models.CardFormPortrait), string(models.CardFormLandscape), string(models.CardFormFullwidth)},
		"cardoverflow": {string(models.CardOverflowNoWrap), string(models.CardOverflowWrap)},
		"morebehavior": {string(models.MoreBehaviorForceInto), string(models.MoreBehaviorKeepOutside)},
		"operator":     {string(models.OperatorAny), string(models.OperatorAll)},
		"rolecontext":  {string(models.RoleContextAny), string(models.RoleContextSystem)},
		"itemtype":     {string(models.ItemTypeStatic), string(models.ItemTypeDynamicCourses)},
		"display":      {string(models.DisplayShowTitleIcon), string(models.DisplayHideTitle), string(models.DisplayHideTitleMobile)},
		"linktarget":   {string(models.TargetSelf), string(models.TargetBlank)},
		"textposition": {string(models.TextPositionBelow), string(models.TextPositionOverlayBottom), string(models.TextPositionOverlayCenter)},
		"displayfield": {string(models.DisplayFieldFullname), string(models.DisplayFieldShortname)},
		"completion":   {string(models.CompletionEnrolled), string(models.CompletionInProgress), string(models.CompletionCompleted)},
		"daterange":    {string(models.DateRangePast), string(models.DateRangePresent), string(models.DateRangeFuture)},
	}
	for tag, members := range enums {
		allowed := make(map[string]struct{}, len(members))
		for _, m := range members {
			allowed[m] = struct{}{}
		}
		v.RegisterValidation(tag, func(fl validator.FieldLevel) bool { //nolint:errcheck
			_, ok := allowed[fl.Field().String()]
			return ok
		})
	}

	return v
}

// validationError converts validator output into the per-field error shape
// the admin forms consume. Extra holds manual checks appended by the caller.
func validationError(err error, extra map[string]string) error {
	fields := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			name := fe.Field()
			if name == "" {
				name = strings.ToLower(fe.StructField())
			}
			switch fe.Tag() {
			case "required":
				fields[name] = "field is required"
			default:
				fields[name] = "invalid value"
			}
		}
	} else if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	for name, message := range extra {
		fields[name] = message
	}
	if len(fields) == 0 {
		return nil
	}
	return appErrors.Validation(fields)
}
