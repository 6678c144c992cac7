package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string `json:"name" validate:"required,notblank"`
	Benefit string `json:"preferredBenefits" validate:"benefit"`
	Phone   string `json:"phoneNumber" validate:"required,phone"`
}

func fields(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			out[e.Field()] = e.Tag()
		}
	}
	return out
}

func TestValidSample(t *testing.T) {
	require.NoError(t, Validate.Struct(sample{Name: "x", Phone: "+919999000000"}))
	require.NoError(t, Validate.Struct(sample{Name: "x", Benefit: "Travel Points", Phone: "whatsapp:+14155238886"}))
}

func TestCustomTags(t *testing.T) {
	err := Validate.Struct(sample{Name: "   ", Benefit: "free coffee", Phone: "99990000"})
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"name":              "notblank",
		"preferredBenefits": "benefit",
		"phoneNumber":       "phone",
	}, fields(err))
}

func TestPhoneRejectsShortAndLeadingZero(t *testing.T) {
	for _, p := range []string{"+12", "+0123456789", "+91 99990 00000"} {
		err := Validate.Struct(sample{Name: "x", Phone: p})
		assert.Equal(t, "phone", fields(err)["phoneNumber"], p)
	}
}
