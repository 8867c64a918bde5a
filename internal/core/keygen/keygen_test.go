package keygen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMustStaticKey_KnownDigest(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e", MustStaticKey("hello"))
	assert.Len(t, MustStaticKey(""), KeyLength)
}

func TestStaticKey_String(t *testing.T) {
	key, err := StaticKey("hello")
	require.NoError(t, err)
	assert.Equal(t, MustStaticKey("hello"), key)
}

func TestStaticKey_DateCollectionsAreOrderInsensitive(t *testing.T) {
	a, err := StaticKey(Tuple{date(2021, 5, 6), date(2020, 1, 1)})
	require.NoError(t, err)
	b, err := StaticKey(Tuple{date(2020, 1, 1), date(2021, 5, 6)})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "d1c0d61e96adea5f", a)
}

func TestStaticKey_MixedTuplesPreserveOrder(t *testing.T) {
	a, err := StaticKey(Tuple{"TX", "Austin", 7})
	require.NoError(t, err)
	b, err := StaticKey(Tuple{"Austin", "TX", 7})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStaticKey_MappingSortedByKey(t *testing.T) {
	a, err := StaticKey(map[string]any{"b": nil, "a": 1})
	require.NoError(t, err)

	assert.Equal(t, "6d8979b93b58ae97", a)
}

func TestStaticKey_Unsupported(t *testing.T) {
	_, err := StaticKey(struct{ X int }{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = StaticKey(Tuple{"ok", make(chan int)})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "None"},
		{"nil string pointer", (*string)(nil), "None"},
		{"bool", true, "True"},
		{"int", 42, "42"},
		{"integral float", 1.0, "1.0"},
		{"float", 2.5, "2.5"},
		{"date", date(2020, 3, 1), "2020-03-01"},
		{"tuple with none", Tuple{"TX", nil, "city"}, "TX_None_city"},
		{"string slice", []string{"b", "a"}, "b_a"},
		{"nested mapping", map[string]any{"z": Tuple{1, 2}, "a": "x"}, "a:x_z:1_2"},
		{"empty tuple", Tuple{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "46fb7408d4f285228f4af516ea25851b", Fingerprint("hello"))
	assert.Len(t, Fingerprint("anything"), 32)
	assert.NotEqual(t, Fingerprint("a"), Fingerprint("b"))
}
