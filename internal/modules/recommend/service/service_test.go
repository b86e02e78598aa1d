package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ebitech02/WanderWise/internal/cache"
	"github.com/ebitech02/WanderWise/internal/climate"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/types"
	"github.com/ebitech02/WanderWise/internal/mqtt"
	"github.com/ebitech02/WanderWise/internal/upstream"
)

type fakeWeather struct {
	samples map[string]upstream.Outcome[climate.Sample]
	calls   atomic.Int32
	jitter  bool
	// gate, when set, holds every call until it is closed.
	gate chan struct{}
}

func (f *fakeWeather) Current(ctx context.Context, country string) upstream.Outcome[climate.Sample] {
	f.calls.Add(1)
	if f.jitter {
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
	}
	if f.gate != nil {
		<-f.gate
		if err := ctx.Err(); err != nil {
			return upstream.Failed[climate.Sample](err)
		}
	}
	if o, ok := f.samples[country]; ok {
		return o
	}
	return upstream.Missing[climate.Sample](nil)
}

type fakeCountries struct {
	listing upstream.Outcome[[]string]
	meta    map[string]upstream.Outcome[upstream.Country]
	lookups atomic.Int32
}

func (f *fakeCountries) ListRegion(context.Context, string, []string) upstream.Outcome[[]string] {
	return f.listing
}

func (f *fakeCountries) Lookup(_ context.Context, name string) upstream.Outcome[upstream.Country] {
	f.lookups.Add(1)
	if o, ok := f.meta[name]; ok {
		return o
	}
	return upstream.Missing[upstream.Country](nil)
}

type fakePlaces struct{ out upstream.Outcome[[]string] }

func (f fakePlaces) Nearby(context.Context, float64, float64) upstream.Outcome[[]string] { return f.out }

type fakeWiki struct{ out upstream.Outcome[string] }

func (f fakeWiki) Description(context.Context, string) upstream.Outcome[string] { return f.out }

type fakeRecipes struct {
	mu       sync.Mutex
	out      upstream.Outcome[[]string]
	cuisines []string
}

func (f *fakeRecipes) ByCuisine(_ context.Context, cuisine string) upstream.Outcome[[]string] {
	f.mu.Lock()
	f.cuisines = append(f.cuisines, cuisine)
	f.mu.Unlock()
	return f.out
}

type fakeCuisines map[string]string

func (f fakeCuisines) Lookup(country string) (string, bool) {
	c, ok := f[country]
	return c, ok
}

func sample(country string, temp float64, desc string) upstream.Outcome[climate.Sample] {
	return upstream.Found(climate.Sample{Country: country, TemperatureC: temp, Description: desc})
}

func located(name string) upstream.Outcome[upstream.Country] {
	return upstream.Found(upstream.Country{
		Name:           name,
		Lat:            45,
		Lon:            5,
		HasCoordinates: true,
		FlagURL:        "https://flags.example/" + strings.ToLower(name) + ".png",
		Capital:        name + " City",
		Currencies:     []string{"EUR"},
		CallingCode:    "+99",
	})
}

type fixture struct {
	weather   *fakeWeather
	countries *fakeCountries
	recipes   *fakeRecipes
	src       Sources
}

func europeFixture() *fixture {
	weather := &fakeWeather{samples: map[string]upstream.Outcome[climate.Sample]{
		"France":   sample("France", 18, "few clouds"),
		"Germany":  sample("Germany", 10, "light rain"),
		"Spain":    sample("Spain", 21, "clear sky"),
		"Italy":    sample("Italy", 22, "clear sky"),
		"Portugal": upstream.Failed[climate.Sample](errors.New("timeout")),
		"Greece":   sample("Greece", 24, "clear sky"),
		"Austria":  sample("Austria", 16, "overcast clouds"),
	}}
	noCoords := located("Spain")
	noCoords.Value.HasCoordinates = false

	countries := &fakeCountries{
		listing: upstream.Found([]string{"France", "Germany", "Spain", "Italy", "France", "Portugal", "Greece", "Austria"}),
		meta: map[string]upstream.Outcome[upstream.Country]{
			"France":   located("France"),
			"Germany":  located("Germany"),
			"Spain":    noCoords,
			"Italy":    located("Italy"),
			"Portugal": located("Portugal"),
			"Austria":  located("Austria"),
		},
	}
	recipes := &fakeRecipes{out: upstream.Found([]string{"Dish 1", "Dish 2"})}

	return &fixture{
		weather:   weather,
		countries: countries,
		recipes:   recipes,
		src: Sources{
			Weather:   weather,
			Countries: countries,
			Places:    fakePlaces{out: upstream.Found([]string{"Old Town", "Museum"})},
			Wiki:      fakeWiki{out: upstream.Found("A fine place to visit.")},
			Recipes:   recipes,
			Cuisines:  fakeCuisines{"France": "French", "Italy": "Italian"},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(src Sources, workers int) *Service {
	return NewService(src, cache.NewMemory(time.Hour, 100), workers, quietLogger())
}

var europe = types.Continent{Name: "Europe", Region: "Europe"}

func names(bundles []types.CountryBundle) string {
	out := make([]string, len(bundles))
	for i, b := range bundles {
		out[i] = b.Name
	}
	return strings.Join(out, ",")
}

func TestRecommend_EuropeTemperate(t *testing.T) {
	for _, workers := range []int{1, 4, 16} {
		f := europeFixture()
		f.weather.jitter = true
		svc := newTestService(f.src, workers)

		res, err := svc.Recommend(context.Background(), europe, climate.Temperate)
		if err != nil {
			t.Fatalf("workers=%d: Recommend: %v", workers, err)
		}

		// Spain is Temperate but has no coordinates; Greece has no metadata;
		// Portugal's weather is unavailable; Germany is Cold.
		if got := names(res.Countries); got != "France,Italy,Austria" {
			t.Errorf("workers=%d: countries = %s; want France,Italy,Austria", workers, got)
		}
		if res.Candidates != 7 {
			t.Errorf("workers=%d: candidates = %d; want 7 after dedupe", workers, res.Candidates)
		}
		if res.Skipped != 2 {
			t.Errorf("workers=%d: skipped = %d; want 2", workers, res.Skipped)
		}
		for _, b := range res.Countries {
			if b.Climate != climate.Temperate {
				t.Errorf("%s climate = %v", b.Name, b.Climate)
			}
		}
	}
}

func TestRecommend_BundleFields(t *testing.T) {
	f := europeFixture()
	svc := newTestService(f.src, 2)

	res, err := svc.Recommend(context.Background(), europe, climate.Temperate)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	france := res.Countries[0]
	if france.Capital != "France City" || france.Currency != "EUR" || france.CallingCode != "+99" {
		t.Errorf("metadata = %+v", france)
	}
	if strings.Join(france.NotablePlaces, "|") != "Old Town|Museum" {
		t.Errorf("places = %v", france.NotablePlaces)
	}
	if france.Description != "A fine place to visit." {
		t.Errorf("description = %q", france.Description)
	}
	if strings.Join(france.FoodRecommendations, "|") != "Dish 1|Dish 2" {
		t.Errorf("food = %v", france.FoodRecommendations)
	}
	if len(france.Degraded) != 0 {
		t.Errorf("degraded = %v; want none", france.Degraded)
	}

	austria := res.Countries[2]
	want := "No cuisine available for Austria."
	if len(austria.FoodRecommendations) != 1 || austria.FoodRecommendations[0] != want {
		t.Errorf("Austria food = %v; want [%s]", austria.FoodRecommendations, want)
	}
	if strings.Join(austria.Degraded, ",") != "food" {
		t.Errorf("Austria degraded = %v; want [food]", austria.Degraded)
	}
}

func TestRecommend_PartialFailureDegradesOneSection(t *testing.T) {
	f := europeFixture()
	f.src.Places = fakePlaces{out: upstream.Failed[[]string](errors.New("503"))}
	svc := newTestService(f.src, 4)

	res, err := svc.Recommend(context.Background(), europe, climate.Temperate)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	france := res.Countries[0]
	if len(france.NotablePlaces) != 1 || france.NotablePlaces[0] != "Information currently unavailable." {
		t.Errorf("places = %v; want the unavailable placeholder", france.NotablePlaces)
	}
	if france.Description != "A fine place to visit." || france.Capital != "France City" {
		t.Errorf("other sections changed: %+v", france)
	}
	if strings.Join(france.Degraded, ",") != "notable_places" {
		t.Errorf("degraded = %v", france.Degraded)
	}
}

func TestRecommend_Placeholders(t *testing.T) {
	f := europeFixture()
	f.src.Places = fakePlaces{out: upstream.Missing[[]string](nil)}
	f.src.Wiki = fakeWiki{out: upstream.Missing[string](nil)}
	f.recipes.out = upstream.Missing[[]string](nil)
	bare := upstream.Found(upstream.Country{Name: "France", Lat: 1, Lon: 2, HasCoordinates: true})
	f.countries.meta["France"] = bare
	svc := newTestService(f.src, 1)

	res, err := svc.Recommend(context.Background(), europe, climate.Temperate)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	b := res.Countries[0]

	checks := map[string]string{
		"places":      b.NotablePlaces[0],
		"description": b.Description,
		"food":        b.FoodRecommendations[0],
		"flag":        b.FlagURL,
		"capital":     b.Capital,
		"currency":    b.Currency,
		"callingCode": b.CallingCode,
	}
	want := map[string]string{
		"places":      "No notable places found. Please check with a local",
		"description": "Check the official website for more information.",
		"food":        "No food recommendations found for French cuisine. Please check with a local.",
		"flag":        "No flag available",
		"capital":     "No capital available",
		"currency":    "No currency available",
		"callingCode": "No calling code available",
	}
	for k, w := range want {
		if checks[k] != w {
			t.Errorf("%s = %q; want %q", k, checks[k], w)
		}
	}
	if len(b.Degraded) != 7 {
		t.Errorf("degraded = %v; want all seven sections", b.Degraded)
	}
}

func TestRecommend_UnavailableSections(t *testing.T) {
	f := europeFixture()
	f.src.Wiki = fakeWiki{out: upstream.Failed[string](nil)}
	f.recipes.out = upstream.Failed[[]string](nil)
	svc := newTestService(f.src, 1)

	res, err := svc.Recommend(context.Background(), europe, climate.Temperate)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	b := res.Countries[0]
	if b.Description != "Information currently unavailable." {
		t.Errorf("description = %q", b.Description)
	}
	if b.FoodRecommendations[0] != "Information currently unavailable." {
		t.Errorf("food = %v", b.FoodRecommendations)
	}
}

func TestRecommend_ListingFailures(t *testing.T) {
	f := europeFixture()
	f.countries.listing = upstream.Failed[[]string](errors.New("connection refused"))
	svc := newTestService(f.src, 2)

	if _, err := svc.Recommend(context.Background(), europe, climate.Cold); !errors.Is(err, ErrListingUnavailable) {
		t.Fatalf("err = %v; want ErrListingUnavailable", err)
	}

	f.countries.listing = upstream.Missing[[]string](nil)
	res, err := svc.Recommend(context.Background(), types.Continent{Name: "Antarctica", Region: "Antarctic"}, climate.Cold)
	if err != nil {
		t.Fatalf("NotFound listing: err = %v; want nil", err)
	}
	if len(res.Countries) != 0 || res.Countries == nil {
		t.Errorf("countries = %#v; want empty non-nil slice", res.Countries)
	}
}

func TestRecommend_CancelledContext(t *testing.T) {
	f := europeFixture()
	svc := newTestService(f.src, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Recommend(ctx, europe, climate.Temperate); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
	if n := f.countries.lookups.Load(); n != 0 {
		t.Errorf("metadata lookups = %d; want none once the request is cancelled", n)
	}
	if n := f.weather.calls.Load(); n != 0 {
		t.Errorf("weather calls = %d; want none once the request is cancelled", n)
	}
}

func TestClimate_CachedAfterFirstLookup(t *testing.T) {
	f := europeFixture()
	svc := newTestService(f.src, 1)
	ctx := context.Background()

	first := svc.Climate(ctx, "France")
	second := svc.Climate(ctx, "France")
	if !first.OK() || !second.OK() || first.Value != second.Value {
		t.Fatalf("lookups = %+v, %+v; want equal successes", first, second)
	}
	if n := f.weather.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d; want 1", n)
	}

	// A repeated request reuses every cached label.
	if _, err := svc.Recommend(ctx, europe, climate.Temperate); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	before := f.weather.calls.Load()
	if _, err := svc.Recommend(ctx, europe, climate.Temperate); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// Only Portugal, whose lookup failed, is asked again.
	if delta := f.weather.calls.Load() - before; delta != 1 {
		t.Errorf("second run upstream calls = %d; want 1", delta)
	}
}

// waitForCalls blocks until the fake weather source has been entered n times.
func waitForCalls(t *testing.T, w *fakeWeather, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.calls.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("weather calls = %d; want %d", w.calls.Load(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestClimate_ConcurrentLookupsShareOneCall(t *testing.T) {
	f := europeFixture()
	f.weather.gate = make(chan struct{})
	svc := newTestService(f.src, 1)

	const callers = 8
	results := make([]upstream.Outcome[climate.Label], callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.Climate(context.Background(), "France")
		}()
	}

	waitForCalls(t, f.weather, 1)
	time.Sleep(50 * time.Millisecond)
	close(f.weather.gate)
	wg.Wait()

	for i, o := range results {
		if !o.OK() || o.Value != climate.Temperate {
			t.Errorf("caller %d = %+v; want temperate", i, o)
		}
	}
	if n := f.weather.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d; want 1", n)
	}
}

func TestClimate_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := europeFixture()
	f.weather.gate = make(chan struct{})
	svc := newTestService(f.src, 1)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	doneA := make(chan upstream.Outcome[climate.Label], 1)
	go func() { doneA <- svc.Climate(ctxA, "Spain") }()
	waitForCalls(t, f.weather, 1)

	doneB := make(chan upstream.Outcome[climate.Label], 1)
	go func() { doneB <- svc.Climate(context.Background(), "Spain") }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	select {
	case a := <-doneA:
		if a.Status != upstream.Unavailable || !errors.Is(a.Err, context.Canceled) {
			t.Errorf("cancelled caller = %+v; want unavailable wrapping context.Canceled", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller still waiting on the shared lookup")
	}

	close(f.weather.gate)
	select {
	case b := <-doneB:
		if !b.OK() || b.Value != climate.Temperate {
			t.Errorf("waiting caller = %+v; want temperate", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiting caller never finished")
	}
	if n := f.weather.calls.Load(); n != 1 {
		t.Errorf("upstream calls = %d; want 1", n)
	}
}

func TestClimate_UnknownNotCached(t *testing.T) {
	f := europeFixture()
	f.weather.samples["Iceland"] = sample("Iceland", math.NaN(), "fog")
	svc := newTestService(f.src, 1)

	o := svc.Climate(context.Background(), "Iceland")
	if o.Status != upstream.Unavailable || !errors.Is(o.Err, climate.ErrDataUnavailable) {
		t.Fatalf("outcome = %+v; want unavailable with ErrDataUnavailable", o)
	}
	svc.Climate(context.Background(), "Iceland")
	if n := f.weather.calls.Load(); n != 2 {
		t.Errorf("upstream calls = %d; want 2", n)
	}
}

func TestInvalidation(t *testing.T) {
	f := europeFixture()
	svc := newTestService(f.src, 1)
	ctx := context.Background()

	svc.Climate(ctx, "France")
	svc.Climate(ctx, "Italy")

	if err := svc.handleInvalidation(mqtt.Invalidation{Country: "france"}); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	svc.Climate(ctx, "France")
	if n := f.weather.calls.Load(); n != 3 {
		t.Errorf("calls after single invalidation = %d; want 3", n)
	}

	if err := svc.handleInvalidation(mqtt.Invalidation{All: true}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, err := svc.CacheStats(ctx)
	if err != nil {
		t.Fatalf("CacheStats: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("entries after clear = %d; want 0", stats.Entries)
	}
}

type recordingSubscriber struct {
	handler func(mqtt.Invalidation) error
}

func (r *recordingSubscriber) SetMessageHandler(h func(mqtt.Invalidation) error) { r.handler = h }

func TestRegister_attachesHandler(t *testing.T) {
	svc := newTestService(europeFixture().src, 1)
	sub := &recordingSubscriber{}
	svc.Register(sub)
	if sub.handler == nil {
		t.Fatal("Register did not attach a handler")
	}
	if err := sub.handler(mqtt.Invalidation{All: true}); err != nil {
		t.Errorf("handler: %v", err)
	}
}
