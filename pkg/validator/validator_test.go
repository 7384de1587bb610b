package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		Email string `json:"email_address" validate:"required,email"`
	}

	err := ValidateStruct(&payload{Email: "not-an-email"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 1)
	require.Equal(t, "email_address", failures[0].Field)
	require.Equal(t, "email", failures[0].Tag)
}

func TestValidateStructFutureRule(t *testing.T) {
	type payload struct {
		TravelDate time.Time `json:"travel_date" validate:"required,future"`
	}

	err := ValidateStruct(&payload{TravelDate: time.Now().Add(-time.Hour)})
	require.Error(t, err)
	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Equal(t, "travel_date", failures[0].Field)
	require.Equal(t, "future", failures[0].Tag)

	require.NoError(t, ValidateStruct(&payload{TravelDate: time.Now().Add(time.Hour)}))
}
