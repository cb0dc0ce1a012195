// Package insights computes the dashboard views over a night dataset:
// row selection, group means and linear trends.
package insights

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/sleeplab/internal/domain/model"
)

// ErrInvalidSelection reports a selection that fails validation.
var ErrInvalidSelection = errors.New("invalid selection")

var weekdays = map[string]int{"mo": 0, "tu": 1, "we": 2, "th": 3, "fr": 4, "sa": 5, "su": 6}

// Selection narrows a dataset the way the dashboard filters do. Empty
// fields select everything.
type Selection struct {
	From    time.Time `json:"from"`
	Week    string    `json:"week" validate:"omitempty,oneof=even odd"`
	Part    string    `json:"part" validate:"omitempty,oneof=weekday weekend"`
	Weekday string    `json:"weekday" validate:"omitempty,oneof=mo tu we th fr sa su"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the enumerated fields.
func (s Selection) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s must be one of [%s], got %q",
				ErrInvalidSelection, fe.Field(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	return nil
}

// Apply returns the rows matching every set criterion.
func (s Selection) Apply(ds *model.Dataset) *model.Dataset {
	day, hasDay := weekdays[s.Weekday]
	return ds.Filter(func(r *model.NightRow) bool {
		if !s.From.IsZero() && r.Day.Before(s.From) {
			return false
		}
		switch s.Week {
		case "even":
			if !r.WeekEven {
				return false
			}
		case "odd":
			if r.WeekEven {
				return false
			}
		}
		switch s.Part {
		case "weekday":
			if r.IsWeekend() {
				return false
			}
		case "weekend":
			if !r.IsWeekend() {
				return false
			}
		}
		if hasDay && r.DayOfWeek != day {
			return false
		}
		return true
	})
}
