package service

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/opencurb/curbmap/internal/catalog"
	"github.com/opencurb/curbmap/internal/style"
)

func TestTransitStopsDedupeByLabel(t *testing.T) {
	is := is.New(t)
	reg, loader := testEnv(t)
	svc := NewTransitService(reg, loader)

	stops, err := svc.Stops(context.Background())
	is.NoErr(err)

	// the fixture carries METRO CENTER twice
	is.Equal(len(stops), 2)
	is.Equal(stops[0].Label, "METRO CENTER")
	is.Equal(stops[1].Label, "K ST + 19TH ST NW")
}

func TestTransitFindStop(t *testing.T) {
	is := is.New(t)
	reg, loader := testEnv(t)
	svc := NewTransitService(reg, loader)

	st, ok, err := svc.Find(context.Background(), "METRO CENTER")
	is.NoErr(err)
	is.True(ok)
	is.Equal(st.Mode, "METRO STATION")
	is.Equal(st.Lines, 3)
	is.Equal(st.Lon, -77.0326)
	is.Equal(st.Lat, 38.8983)
}

func TestTransitFindMissingStop(t *testing.T) {
	is := is.New(t)
	reg, loader := testEnv(t)
	svc := NewTransitService(reg, loader)

	_, ok, err := svc.Find(context.Background(), "NOWHERE STATION")
	is.NoErr(err)
	is.True(!ok)
}

func TestTransitSearchFiltersBySubstring(t *testing.T) {
	is := is.New(t)
	reg, loader := testEnv(t)
	svc := NewTransitService(reg, loader)
	ctx := context.Background()

	matched, err := svc.Search(ctx, "metro")
	is.NoErr(err)
	is.Equal(len(matched), 1)
	is.Equal(matched[0].Label, "METRO CENTER")

	all, err := svc.Search(ctx, "  ")
	is.NoErr(err)
	is.Equal(len(all), 2)

	none, err := svc.Search(ctx, "union station")
	is.NoErr(err)
	is.Equal(len(none), 0)
}

func TestTransitWithoutDataset(t *testing.T) {
	is := is.New(t)
	_, loader := testEnv(t)

	reg, err := catalog.New([]catalog.Dataset{
		{Name: "Traffic Volume", File: "traffic.geojson", Kind: catalog.KindTraffic,
			Fill: style.RGBA{255, 99, 71, 140}, Line: style.RGBA{255, 99, 71, 255}},
	})
	is.NoErr(err)

	svc := NewTransitService(reg, loader)
	_, err = svc.Stops(context.Background())
	is.True(errors.Is(err, ErrNoTransitDataset))
}
