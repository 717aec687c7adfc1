package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"19.99", 1999},
		{"19.9", 1990},
		{"19", 1900},
		{"0.05", 5},
		{".5", 50},
		{"-5.00", -500},
		{"+2.50", 250},
		{" 10.00 ", 1000},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "19.999", "19.", "1,99", "19.9a", "."} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "19.99", Cents(1999).String())
	assert.Equal(t, "19.90", Cents(1990).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "-5.00", Cents(-500).String())
	assert.Equal(t, "0.00", Cents(0).String())
}

func TestJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Cents(1999))
	require.NoError(t, err)
	assert.Equal(t, "19.99", string(out))

	var c Cents
	require.NoError(t, json.Unmarshal([]byte("19.99"), &c))
	assert.Equal(t, Cents(1999), c)

	require.NoError(t, json.Unmarshal([]byte(`"7.50"`), &c))
	assert.Equal(t, Cents(750), c)
}
