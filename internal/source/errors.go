package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/flab03/ymatch-analysis/internal/matcher"
)

// ErrInvalidRecord classifies every malformed corpus line.
var ErrInvalidRecord = matcher.ErrInvalidRecord

// RecordError reports a corpus line that is not a valid review record.
// It matches matcher.ErrInvalidRecord with errors.Is.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: invalid review record: %v", e.Line, e.Err)
}

// Unwrap exposes both the cause and the invalid-record class.
func (e *RecordError) Unwrap() []error {
	return []error{e.Err, ErrInvalidRecord}
}

// describeValidation turns validator output into one readable message.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("missing %s", field))
		case "eq":
			msgs = append(msgs, fmt.Sprintf("%s is %q, want %q", field, fe.Value(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func jsonName(field string) string {
	switch field {
	case "BusinessID":
		return "business_id"
	case "UserID":
		return "user_id"
	case "Stars":
		return "stars"
	case "Type":
		return "type"
	}
	return field
}
