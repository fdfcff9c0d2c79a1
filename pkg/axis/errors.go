package axis

import (
	"net/http"

	"github.com/ansel1/merry/v2"
)

var (
	// ErrInvalidInput is returned for a malformed numeric step. It is recovered
	// locally by substituting DefaultStep and never reaches the user.
	ErrInvalidInput = merry.New("invalid input")
	// ErrInvalidAxisSettings is returned when a manual override is rejected.
	// The previous configuration is kept.
	ErrInvalidAxisSettings = merry.New("invalid axis settings", merry.WithHTTPCode(http.StatusBadRequest))
	// ErrRunawayTicks is returned when the tick walk hits MaxTicks.
	ErrRunawayTicks = merry.New("tick count exceeds limit")
)

// InvalidSettings reports a rejected override field.
func InvalidSettings(a Axis, field, reason string) error {
	return merry.Wrap(ErrInvalidAxisSettings,
		merry.WithValue("axis", a.String()),
		merry.WithValue("field", field),
		merry.WithMessagef("invalid axis settings: %s axis: %s %s", a, field, reason),
	)
}

// Field returns the override field an ErrInvalidAxisSettings error refers to.
func Field(err error) string {
	v, _ := merry.Value(err, "field").(string)
	return v
}
