package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

func TestCheckValue(t *testing.T) {
	tests := []struct {
		format domain.ValueFormat
		value  string
		ok     bool
	}{
		{domain.FormatNumber, "12.5", true},
		{domain.FormatNumber, "-1,204.00", true},
		{domain.FormatNumber, "n/a", false},
		{domain.FormatNumber, "", false},
		{domain.FormatMonthDay, "2/9", true},
		{domain.FormatMonthDay, "2/30", false},
		{domain.FormatDate, "2025-1-9", true},
		{domain.FormatDate, "9/1/2025", false},
		{domain.FormatText, "", true},
		{domain.FormatText, "anything", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.value, func(t *testing.T) {
			err := checkValue(domain.Column{Name: "c", Format: tt.format}, tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrMalformed)
			}
		})
	}
}

func TestResolveDate(t *testing.T) {
	ctx := domain.MustParseDate("2025-06-01")

	got, err := resolveDate(domain.Observation{Date: domain.MustParseDate("2025-05-30")}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-30", got.String())

	got, err = resolveDate(domain.Observation{MonthDay: "6/3"}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", got.String())

	_, err = resolveDate(domain.Observation{}, ctx)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}
