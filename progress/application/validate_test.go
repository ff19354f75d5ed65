package application

import (
	"errors"
	"fmt"
	"testing"

	"progress-sync/progress/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *domain.ValidationError, got %v", err)
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestParsePatch_ValidPayloads(t *testing.T) {
	p, err := ParsePatch([]byte(`{"clickCount":5}`))
	require.NoError(t, err)
	require.NotNil(t, p.ClickCount)
	assert.Equal(t, int64(5), *p.ClickCount)
	assert.Nil(t, p.Trips)
	assert.Nil(t, p.GlobalHighestProgress)
	assert.Nil(t, p.LastClickTime)

	p, err = ParsePatch([]byte(`{"trips":[{"image":"/a.png","title":"T","status":"10% completed","percentage":10}],"globalHighestProgress":100,"lastClickTime":1700000000000}`))
	require.NoError(t, err)
	require.NotNil(t, p.Trips)
	assert.Equal(t, []domain.TripProgress{{Image: "/a.png", Title: "T", Status: "10% completed", Percentage: 10}}, *p.Trips)
	assert.Equal(t, 100, *p.GlobalHighestProgress)
	assert.Equal(t, int64(1700000000000), *p.LastClickTime)
}

func TestParsePatch_EmptyObjectAndUnknownKeys(t *testing.T) {
	p, err := ParsePatch([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, p.Empty())

	p, err = ParsePatch([]byte(`{"foo":"bar","clickCount":1}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), *p.ClickCount)
}

func TestParsePatch_IntegralFloatsAccepted(t *testing.T) {
	p, err := ParsePatch([]byte(`{"clickCount":5.0,"lastClickTime":1e3}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), *p.ClickCount)
	assert.Equal(t, int64(1000), *p.LastClickTime)
}

func TestParsePatch_EmptyTripsArray(t *testing.T) {
	p, err := ParsePatch([]byte(`{"trips":[]}`))
	require.NoError(t, err)
	require.NotNil(t, p.Trips)
	assert.Empty(t, *p.Trips)
}

func TestParsePatch_Malformed(t *testing.T) {
	for _, body := range []string{``, `{`, `{"a":}`, `{} {}`, `nope`} {
		_, err := ParsePatch([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedBody, "body %q", body)
	}
}

func TestParsePatch_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"not an object", `[1,2]`, []string{"$"}},
		{"null body", `null`, []string{"$"}},
		{"negative clickCount", `{"clickCount":-1}`, []string{"clickCount"}},
		{"fractional clickCount", `{"clickCount":1.5}`, []string{"clickCount"}},
		{"string clickCount", `{"clickCount":"5"}`, []string{"clickCount"}},
		{"global above 100", `{"globalHighestProgress":101}`, []string{"globalHighestProgress"}},
		{"global below 0", `{"globalHighestProgress":-1}`, []string{"globalHighestProgress"}},
		{"negative lastClickTime", `{"lastClickTime":-5}`, []string{"lastClickTime"}},
		{"trips not array", `{"trips":{}}`, []string{"trips"}},
		{"trips null", `{"trips":null}`, []string{"trips"}},
		{"trip not object", `{"trips":[1]}`, []string{"trips[0]"}},
		{"trip missing fields", `{"trips":[{}]}`, []string{"trips[0].image", "trips[0].title", "trips[0].status", "trips[0].percentage"}},
		{"trip percentage out of range", `{"trips":[{"image":"i","title":"t","status":"s","percentage":150}]}`, []string{"trips[0].percentage"}},
		{"trip wrong types", `{"trips":[{"image":1,"title":"t","status":true,"percentage":"10"}]}`, []string{"trips[0].image", "trips[0].status", "trips[0].percentage"}},
		{"one bad trip among good", `{"trips":[{"image":"i","title":"t","status":"s","percentage":10},{"image":"i","title":"t","status":"s","percentage":-1}]}`, []string{"trips[1].percentage"}},
		{"multiple fields", `{"clickCount":-1,"globalHighestProgress":200}`, []string{"clickCount", "globalHighestProgress"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePatch([]byte(tt.body))
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrMalformedBody)
			assert.Equal(t, tt.fields, fieldNames(t, err))
			assert.True(t, p.Empty(), "rejected payload must not yield a partial patch")
		})
	}
}

// Qualquer valor fora da faixa rejeita o payload inteiro, mesmo com outros
// campos válidos junto.
func TestProperty_OutOfRangeRejectsWholePayload(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var bad string
		switch rapid.IntRange(0, 3).Draw(rt, "which") {
		case 0:
			bad = fmt.Sprintf(`"clickCount":%d`, rapid.Int64Range(-1<<40, -1).Draw(rt, "v"))
		case 1:
			bad = fmt.Sprintf(`"lastClickTime":%d`, rapid.Int64Range(-1<<40, -1).Draw(rt, "v"))
		case 2:
			v := rapid.OneOf(rapid.IntRange(-1000, -1), rapid.IntRange(101, 1000)).Draw(rt, "v")
			bad = fmt.Sprintf(`"globalHighestProgress":%d`, v)
		case 3:
			v := rapid.OneOf(rapid.IntRange(-1000, -1), rapid.IntRange(101, 1000)).Draw(rt, "v")
			bad = fmt.Sprintf(`"trips":[{"image":"i","title":"t","status":"s","percentage":%d}]`, v)
		}
		body := `{` + bad + `}`
		if bad[1] != 'c' {
			body = `{"clickCount":3,` + bad + `}`
		}

		p, err := ParsePatch([]byte(body))
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			rt.Fatalf("expected validation error for %s, got %v", body, err)
		}
		if !p.Empty() {
			rt.Fatalf("expected no partial patch for %s", body)
		}
	})
}
