package wikidata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeInSeconds(t *testing.T) {
	tests := []struct {
		amount string
		unit   string
		want   float64
	}{
		{"+12.32", entityURI("Q1092296"), 12.32 * 3.156e7},
		{"1", entityURI("Q11574"), 1},
		{"2", entityURI("Q7727"), 120},
		{"+0.5", entityURI("Q25235"), 1800},
		{"611", entityURI("Q723733"), 0.611},
		{"3", entityURI("Q2483628"), 3e-18},
	}

	for _, tt := range tests {
		got, err := TimeInSeconds(tt.amount, tt.unit)
		require.NoError(t, err, "%s %s", tt.amount, tt.unit)
		assert.InEpsilon(t, tt.want, got, 1e-9, "%s %s", tt.amount, tt.unit)
	}
}

func TestTimeInSecondsErrors(t *testing.T) {
	_, err := TimeInSeconds("1", entityURI("Q42"))
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = TimeInSeconds("abc", entityURI("Q11574"))
	assert.ErrorContains(t, err, "parse amount")

	_, err = TimeInSeconds("1", "http://www.wikidata.org/entity/P31")
	assert.ErrorContains(t, err, "parse unit")
}

func TestEntityID(t *testing.T) {
	assert.Equal(t, "Q556", EntityID(entityURI("Q556")))
	assert.Equal(t, "Q556", EntityID("Q556"))
}

func TestNumericID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"Q123", 123, false},
		{entityURI("Q19569"), 19569, false},
		{"123", 123, false},
		{"Q", 0, true},
		{"P31", 0, true},
	}

	for _, tt := range tests {
		got, err := NumericID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
