package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"fastfood_delivery_backend/internal/geocode"
	"fastfood_delivery_backend/platform/logger"
)

func TestEachAddressReadsLines(t *testing.T) {
	input := "# delivery addresses\n12 Lê Lợi, Quận 1\n\n  45 Hai Bà Trưng  \n"
	var got []string
	err := eachAddress(nil, strings.NewReader(input), func(a string) error {
		got = append(got, a)
		return nil
	})
	if err != nil {
		t.Fatalf("eachAddress: %v", err)
	}
	want := []string{"12 Lê Lợi, Quận 1", "45 Hai Bà Trưng"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEachAddressPrefersArgs(t *testing.T) {
	var got []string
	err := eachAddress([]string{"1 Nguyễn Huệ", " "}, strings.NewReader("ignored\n"), func(a string) error {
		got = append(got, a)
		return nil
	})
	if err != nil {
		t.Fatalf("eachAddress: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"1 Nguyễn Huệ"}) {
		t.Fatalf("got %q", got)
	}
}

func TestEachAddressStopsOnError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := eachAddress(nil, strings.NewReader("a\nb\nc\n"), func(string) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

type oneShotProvider struct {
	results []geocode.Suggestion
	err     error
}

func (p oneShotProvider) Name() string { return "one-shot" }

func (p oneShotProvider) Search(context.Context, geocode.SearchQuery) ([]geocode.Suggestion, error) {
	return p.results, p.err
}

func (p oneShotProvider) Reverse(context.Context, float64, float64, []string) (*geocode.Suggestion, error) {
	return nil, geocode.ErrNoResult
}

func TestGeocodeOne(t *testing.T) {
	ctx := context.Background()

	res := geocodeOne(ctx, oneShotProvider{results: []geocode.Suggestion{{
		DisplayName: "12 Lê Lợi, Bến Nghé",
		Lat:         "10.77",
		Lon:         "106.70",
		Address:     geocode.AddressParts{HouseNumber: "12", Road: "Lê Lợi", Suburb: "Bến Nghé"},
	}}}, "12 Le Loi", "vn", nil)
	if res.Error != "" || res.Address == nil || res.Address.StreetAddress != "12 Lê Lợi" {
		t.Fatalf("result = %+v", res)
	}

	if res := geocodeOne(ctx, oneShotProvider{}, "nowhere", "vn", nil); res.Error != "no result" {
		t.Fatalf("empty result = %+v", res)
	}
	if res := geocodeOne(ctx, oneShotProvider{err: errors.New("timeout")}, "x", "vn", nil); res.Error != "timeout" {
		t.Fatalf("failure = %+v", res)
	}
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, errors.New("broken pipe")
}

func TestProcessWritesOneLinePerAddress(t *testing.T) {
	b := batch{
		provider: oneShotProvider{results: []geocode.Suggestion{{
			DisplayName: "12 Lê Lợi, Bến Nghé",
			Address:     geocode.AddressParts{HouseNumber: "12", Road: "Lê Lợi"},
		}}},
		countryCode: "vn",
		log:         logger.Nop(),
	}

	var out bytes.Buffer
	done, failed, err := b.process(context.Background(), nil, strings.NewReader("12 Le Loi\n# skipped\n45 Le Loi\n"), &out)
	if err != nil || done != 2 || failed != 0 {
		t.Fatalf("done=%d failed=%d err=%v", done, failed, err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	var first result
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Input != "12 Le Loi" || first.Address == nil {
		t.Fatalf("first = %+v", first)
	}
}

func TestProcessStopsWhenOutputFails(t *testing.T) {
	b := batch{provider: oneShotProvider{}, countryCode: "vn", log: logger.Nop()}

	w := &failingWriter{}
	done, failed, err := b.process(context.Background(), []string{"a", "b"}, nil, w)
	if err == nil || w.writes != 1 {
		t.Fatalf("err=%v writes=%d, want an error after the first write", err, w.writes)
	}
	if done != 1 || failed != 1 {
		t.Fatalf("done=%d failed=%d", done, failed)
	}
}

func TestProcessHonoursCancellation(t *testing.T) {
	b := batch{provider: oneShotProvider{}, countryCode: "vn", log: logger.Nop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done, _, err := b.process(ctx, []string{"a"}, nil, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) || done != 0 {
		t.Fatalf("done=%d err=%v", done, err)
	}
}
