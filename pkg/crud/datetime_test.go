package crud

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRoundTrip(t *testing.T) {
	d := NewDate(2023, time.January, 5)
	assert.Equal(t, "2023-01-05", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2023-01-05"`, string(out))

	var back Date
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, d, back)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2023-01-05", v)
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2020, 6, 1, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2020, time.June, 1), d)

	require.NoError(t, d.Scan("2021-07-02T00:00:00Z"))
	assert.Equal(t, NewDate(2021, time.July, 2), d)

	require.NoError(t, d.Scan([]byte("2022-08-03")))
	assert.Equal(t, NewDate(2022, time.August, 3), d)

	assert.Error(t, d.Scan(42))
	assert.True(t, NewDate(2020, 1, 1).Before(NewDate(2020, 1, 2)))
}

func TestTimeOfDay(t *testing.T) {
	for _, s := range []string{"09:30:15", "09:30:15.250"} {
		tod, err := ParseTimeOfDay(s)
		require.NoError(t, err)
		assert.Equal(t, TimeOfDay{Hour: 9, Minute: 30, Second: 15}, tod)
	}

	tod, err := ParseTimeOfDay("18:05")
	require.NoError(t, err)
	assert.Equal(t, "18:05:00", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	var scanned TimeOfDay
	require.NoError(t, scanned.Scan("07:00:01"))
	assert.Equal(t, TimeOfDay{Hour: 7, Second: 1}, scanned)
	assert.Error(t, scanned.Scan(1.5))

	out, err := json.Marshal(struct {
		At TimeOfDay `json:"at"`
	}{At: scanned})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"07:00:01"}`, string(out))
}

func TestDateTime(t *testing.T) {
	var dt DateTime
	require.NoError(t, dt.Scan("2024-05-06 07:08:09"))
	assert.True(t, dt.Equal(DateTimeOf(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))))

	require.NoError(t, dt.Scan([]byte("2024-05-06T07:08:09Z")))
	assert.Equal(t, 2024, dt.Year())

	now := time.Now()
	require.NoError(t, dt.Scan(now))
	assert.True(t, dt.Equal(DateTimeOf(now)))
	assert.Error(t, dt.Scan(3))

	out, err := json.Marshal(DateTimeOf(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-02T03:04:05Z"`, string(out))

	parsed, err := ParseValue[DateTime]("2024-01-02T03:04:05+01:00")
	require.NoError(t, err)
	assert.Equal(t, 2, parsed.UTC().Hour())

	_, err = ParseDateTime("yesterday")
	assert.Error(t, err)
	assert.True(t, Equal(DateTimeOf(now), DateTimeOf(now.UTC())))
}
