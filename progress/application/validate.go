package application

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"progress-sync/progress/domain"
)

// ErrMalformedBody indica que o corpo não é JSON válido.
var ErrMalformedBody = errors.New("malformed JSON body")

// ParsePatch decodifica e valida um payload de atualização parcial.
//
// Retorna ErrMalformedBody (embrulhado) quando o corpo não é JSON, ou
// *domain.ValidationError com todos os campos reprovados. Em caso de erro o
// Patch retornado é zero: nunca há aplicação parcial.
// Chaves desconhecidas são ignoradas.
func ParsePatch(body []byte) (domain.Patch, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return domain.Patch{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.Patch{}, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedBody)
	}

	verr := &domain.ValidationError{}
	obj, ok := raw.(map[string]any)
	if !ok {
		verr.Add("$", "must be a JSON object")
		return domain.Patch{}, verr
	}

	var p domain.Patch

	if v, ok := obj["trips"]; ok {
		if trips, ok := parseTrips(v, verr); ok {
			p.Trips = &trips
		}
	}
	if v, ok := obj["clickCount"]; ok {
		if n, ok := intField(v, "clickCount", 0, math.MaxInt64, verr); ok {
			p.ClickCount = &n
		}
	}
	if v, ok := obj["globalHighestProgress"]; ok {
		if n, ok := intField(v, "globalHighestProgress", 0, 100, verr); ok {
			g := int(n)
			p.GlobalHighestProgress = &g
		}
	}
	if v, ok := obj["lastClickTime"]; ok {
		if n, ok := intField(v, "lastClickTime", 0, math.MaxInt64, verr); ok {
			p.LastClickTime = &n
		}
	}

	if err := verr.OrNil(); err != nil {
		return domain.Patch{}, err
	}
	return p, nil
}

func parseTrips(v any, verr *domain.ValidationError) ([]domain.TripProgress, bool) {
	items, ok := v.([]any)
	if !ok {
		verr.Add("trips", "must be an array")
		return nil, false
	}

	before := len(verr.Fields)
	trips := make([]domain.TripProgress, 0, len(items))
	for i, item := range items {
		prefix := fmt.Sprintf("trips[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			verr.Add(prefix, "must be an object")
			continue
		}
		var t domain.TripProgress
		t.Image, _ = stringField(obj, prefix, "image", verr)
		t.Title, _ = stringField(obj, prefix, "title", verr)
		t.Status, _ = stringField(obj, prefix, "status", verr)
		if pv, ok := obj["percentage"]; ok {
			n, _ := intField(pv, prefix+".percentage", 0, 100, verr)
			t.Percentage = int(n)
		} else {
			verr.Add(prefix+".percentage", "is required")
		}
		trips = append(trips, t)
	}
	return trips, len(verr.Fields) == before
}

func stringField(obj map[string]any, prefix, name string, verr *domain.ValidationError) (string, bool) {
	field := prefix + "." + name
	v, ok := obj[name]
	if !ok {
		verr.Add(field, "is required")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		verr.Add(field, "must be a string")
		return "", false
	}
	return s, true
}

// intField aceita números JSON inteiros (inclusive 5.0 ou 1e3) dentro de [lo, hi].
func intField(v any, field string, lo, hi int64, verr *domain.ValidationError) (int64, bool) {
	num, ok := v.(json.Number)
	if !ok {
		verr.Add(field, "must be a number")
		return 0, false
	}
	n, ok := asInt(num)
	if !ok {
		verr.Add(field, "must be an integer")
		return 0, false
	}
	if n < lo || n > hi {
		if hi == math.MaxInt64 {
			verr.Add(field, fmt.Sprintf("must be >= %d", lo))
		} else {
			verr.Add(field, fmt.Sprintf("must be between %d and %d", lo, hi))
		}
		return 0, false
	}
	return n, true
}

func asInt(num json.Number) (int64, bool) {
	if i, err := num.Int64(); err == nil {
		return i, true
	}
	f, err := num.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// fora da faixa exata de float64 não dá para confiar no valor
	if math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
