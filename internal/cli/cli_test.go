package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reffo/internal/logger"
	"github.com/mesh-intelligence/reffo/internal/paths"
	"github.com/mesh-intelligence/reffo/pkg/reffo"
	"github.com/mesh-intelligence/reffo/pkg/schema"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	res := env.mustRun("version")
	assert.Contains(t, res.Stdout, "reffo v"+reffo.Version)
	assert.Contains(t, res.Stdout, modulePath)

	_, err := os.Stat(env.DataDir)
	assert.True(t, os.IsNotExist(err), "version must not touch the data dir")
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	first := mustRunJSON[initResult](env, "init")
	assert.True(t, first.ConfigWritten)
	assert.NotEmpty(t, first.Settings.ID)
	assert.Equal(t, types.DefaultSellingScope, first.Settings.DefaultSellingScope)
	assert.FileExists(t, paths.ConfigFile(env.ConfigDir))
	assert.FileExists(t, filepath.Join(env.DataDir, "refs.jsonl"))

	second := mustRunJSON[initResult](env, "init")
	assert.False(t, second.ConfigWritten)
	assert.Equal(t, first.Settings.ID, second.Settings.ID)
}

func TestInitAppliesSellingDefaultsFromEnv(t *testing.T) {
	t.Setenv("REFFO_SELLING_SCOPE", types.ScopeRange)
	t.Setenv("REFFO_SELLING_RADIUS_MILES", "10")
	env := newTestEnv(t)

	res := mustRunJSON[initResult](env, "init")
	assert.Equal(t, types.ScopeRange, res.Settings.DefaultSellingScope)
	assert.Equal(t, 10.0, res.Settings.DefaultSellingRadiusMiles)

	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Bike")
	assert.Equal(t, types.ScopeRange, ref.SellingScope)
	require.NotNil(t, ref.SellingRadiusMiles)
	assert.Equal(t, 10.0, *ref.SellingRadiusMiles)
}

func TestConfigFileCurrency(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.ConfigDir, 0o755))
	require.NoError(t, os.WriteFile(paths.ConfigFile(env.ConfigDir), []byte("backend: sqlite\ncurrency: EUR\n"), 0o644))

	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Lamp")
	offer := mustRunJSON[types.Offer](env, "offer", "add", ref.ID, "--price", "20")
	assert.Equal(t, "EUR", offer.PriceCurrency)
}

func TestInvalidConfigIsUserError(t *testing.T) {
	t.Setenv("REFFO_CURRENCY", "dollars")
	env := newTestEnv(t)

	res := env.run("status")
	require.Error(t, res.Err)
	assert.Equal(t, exitUserError, res.ExitCode)
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Desk", "--status", types.ListingForSale)
	env.mustRun("offer", "add", ref.ID, "--price", "50")

	st := mustRunJSON[statusResult](env, "status")
	assert.Equal(t, reffo.Version, st.Version)
	assert.Equal(t, ref.BeaconID, st.ID)
	assert.Equal(t, 1, st.RefCount)
	assert.Equal(t, 1, st.OfferCount)
	assert.False(t, st.DHT.Connected)
	assert.Equal(t, filepath.Join(env.DataDir, "logs", logger.FileName), st.LogFile)

	res := env.mustRun("status")
	assert.Contains(t, res.Stdout, "dht:     disconnected")
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)

	all := mustRunJSON[[]categoryView](env, "categories", "list")
	assert.Len(t, all, len(schema.Categories.Entries()))

	car := mustRunJSON[categoryView](env, "categories", "show", "Vehicles", "Cars")
	assert.Equal(t, "Car", car.SchemaOrgType)
	assert.Contains(t, car.ConditionOptions, "good")

	other := mustRunJSON[categoryView](env, "categories", "show", "Nope")
	assert.Equal(t, schema.Default.SchemaOrgType(), other.SchemaOrgType)

	res := env.mustRun("categories")
	assert.Contains(t, res.Stdout, "Vehicles")
	assert.Contains(t, res.Stdout, "Cars")
}

func TestJSONLD(t *testing.T) {
	env := newTestEnv(t)

	ld := parseJSON[map[string]any](t, env.mustRun("jsonld",
		"--category", "Vehicles", "--subcategory", "Cars",
		"--attr", "year=2019", "--attr", "make=Honda", "--attr", "transmission=manual",
		"--name", "2019 Honda Civic", "--price", "0").Stdout)

	assert.Equal(t, "Car", ld["@type"])
	assert.Equal(t, "2019", ld["vehicleModelDate"])
	assert.Equal(t, "manual", ld["vehicleTransmission"])
	assert.Equal(t, map[string]any{"@type": "Brand", "name": "Honda"}, ld["brand"])
	offers, ok := ld["offers"].(map[string]any)
	require.True(t, ok, "price 0 still produces an offer")
	assert.Equal(t, 0.0, offers["price"])
	assert.Equal(t, types.DefaultCurrency, offers["priceCurrency"])

	noPrice := parseJSON[map[string]any](t, env.mustRun("jsonld", "--name", "Thing").Stdout)
	assert.NotContains(t, noPrice, "offers")
}

func TestJSONLDRejectsBadAttributes(t *testing.T) {
	env := newTestEnv(t)
	for _, attr := range []string{"transmission=warp", "year=new", "noequals"} {
		t.Run(attr, func(t *testing.T) {
			res := env.run("jsonld", "--category", "Vehicles", "--subcategory", "Cars", "--attr", attr)
			require.Error(t, res.Err)
			assert.Equal(t, exitUserError, res.ExitCode)
		})
	}
}

func TestRefLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	ref := mustRunJSON[types.Ref](env, "ref", "add",
		"--name", "2019 Honda Civic", "--category", "Vehicles", "--subcategory", "Cars",
		"--attr", "year=2019", "--attr", "make=Honda", "--attr", "mileage=42000",
		"--condition", "good", "--lat", "37.7749", "--lng", "-122.4194",
		"--address", "1 Market St", "--city", "San Francisco")
	require.NotEmpty(t, ref.ID)
	assert.Equal(t, types.ListingPrivate, ref.ListingStatus)
	assert.Equal(t, 1, ref.Quantity)
	assert.Equal(t, 2019.0, ref.Attributes["year"])
	assert.Equal(t, types.DefaultSellingScope, ref.SellingScope)

	detail := mustRunJSON[refDetail](env, "ref", "get", ref.ID)
	assert.Equal(t, "2019 Honda Civic", detail.Ref.Name)
	assert.Empty(t, detail.Offers)
	assert.NotEmpty(t, detail.Summary)

	updated := mustRunJSON[types.Ref](env, "ref", "update", ref.ID,
		"--status", types.ListingForSale, "--attr", "mileage=43000", "--attr", "make=")
	assert.Equal(t, types.ListingForSale, updated.ListingStatus)
	assert.Equal(t, 43000.0, updated.Attributes["mileage"])
	assert.NotContains(t, updated.Attributes, "make")
	assert.Equal(t, 2019.0, updated.Attributes["year"])
	assert.Equal(t, "1 Market St", updated.Address)

	human := env.mustRun("ref", "get", ref.ID)
	assert.Contains(t, human.Stdout, "2019 Honda Civic")
	assert.Contains(t, human.Stdout, "for_sale")

	env.mustRun("ref", "delete", ref.ID)
	res := env.run("ref", "get", ref.ID)
	require.Error(t, res.Err)
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Contains(t, res.Err.Error(), "not found")

	res = env.run("ref", "delete", ref.ID)
	assert.Equal(t, exitUserError, res.ExitCode)
}

func TestRefAddValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing name", []string{"ref", "add", "--category", "Vehicles"}},
		{"condition not offered", []string{"ref", "add", "--name", "Car", "--category", "Vehicles", "--subcategory", "Cars", "--condition", "mint"}},
		{"unknown status", []string{"ref", "add", "--name", "Car", "--status", "lost"}},
		{"lat without lng", []string{"ref", "add", "--name", "Car", "--lat", "1"}},
		{"negative quantity", []string{"ref", "add", "--name", "Car", "--quantity", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(tt.args...)
			require.Error(t, res.Err)
			assert.Equal(t, exitUserError, res.ExitCode)
		})
	}
}

func TestRefList(t *testing.T) {
	env := newTestEnv(t)
	sf := mustRunJSON[types.Ref](env, "ref", "add", "--name", "SF Sofa", "--category", "Home & Garden", "--subcategory", "Furniture",
		"--lat", "37.7749", "--lng", "-122.4194", "--status", types.ListingForSale)
	oak := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Oakland Table", "--category", "Home & Garden", "--subcategory", "Furniture",
		"--lat", "37.8044", "--lng", "-122.2712")
	la := mustRunJSON[types.Ref](env, "ref", "add", "--name", "LA Civic", "--category", "Vehicles", "--subcategory", "Cars",
		"--lat", "34.0522", "--lng", "-118.2437", "--status", types.ListingForSale)

	ids := func(refs []types.Ref) []string {
		out := make([]string, len(refs))
		for i, r := range refs {
			out[i] = r.ID
		}
		return out
	}

	all := mustRunJSON[[]types.Ref](env, "ref", "list")
	assert.Equal(t, []string{la.ID, oak.ID, sf.ID}, ids(all), "newest first")

	furniture := mustRunJSON[[]types.Ref](env, "ref", "list", "--category", "Home & Garden")
	assert.ElementsMatch(t, []string{sf.ID, oak.ID}, ids(furniture))

	forSale := mustRunJSON[[]types.Ref](env, "ref", "list", "--status", types.ListingForSale)
	assert.ElementsMatch(t, []string{sf.ID, la.ID}, ids(forSale))

	search := mustRunJSON[[]types.Ref](env, "ref", "list", "--search", "civic")
	assert.Equal(t, []string{la.ID}, ids(search))

	near := mustRunJSON[[]types.Ref](env, "ref", "list", "--near", "37.78,-122.41", "--radius", "20")
	assert.Equal(t, []string{sf.ID, oak.ID}, ids(near), "nearest first")

	page := mustRunJSON[[]types.Ref](env, "ref", "list", "--limit", "1", "--offset", "1")
	assert.Equal(t, []string{oak.ID}, ids(page))

	res := env.run("ref", "list", "--near", "somewhere")
	assert.Equal(t, exitUserError, res.ExitCode)
}

func TestRefJSONLD(t *testing.T) {
	env := newTestEnv(t)
	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Civic", "--category", "Vehicles", "--subcategory", "Cars",
		"--attr", "make=Honda", "--sku", "CIV-1")
	env.mustRun("offer", "add", ref.ID, "--price", "18500")

	ld := parseJSON[map[string]any](t, env.mustRun("ref", "jsonld", ref.ID).Stdout)
	assert.Equal(t, "Civic", ld["name"])
	assert.Equal(t, "CIV-1", ld["sku"])
	offers, ok := ld["offers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 18500.0, offers["price"])
	assert.Equal(t, map[string]any{"@type": "Organization", "@id": ref.BeaconID}, offers["seller"])
}

func TestOfferLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Lamp")

	offer := mustRunJSON[types.Offer](env, "offer", "add", ref.ID, "--price", "25", "--location", "porch")
	assert.Equal(t, types.OfferActive, offer.Status)
	assert.Equal(t, types.DefaultCurrency, offer.PriceCurrency)
	assert.Equal(t, ref.BeaconID, offer.SellerID)
	assert.Equal(t, "porch", offer.Location)

	second := mustRunJSON[types.Offer](env, "offer", "add", ref.ID, "--price", "20", "--currency", "CAD")
	assert.Equal(t, "CAD", second.PriceCurrency)

	listed := mustRunJSON[[]types.Offer](env, "offer", "list", "--ref", ref.ID)
	assert.Len(t, listed, 2)

	sold := mustRunJSON[types.Offer](env, "offer", "sell", offer.ID)
	assert.Equal(t, types.OfferSold, sold.Status)

	res := env.run("offer", "withdraw", offer.ID)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, types.ErrInvalidTransition)
	assert.Equal(t, exitUserError, res.ExitCode)

	withdrawn := mustRunJSON[types.Offer](env, "offer", "withdraw", second.ID)
	assert.Equal(t, types.OfferWithdrawn, withdrawn.Status)

	active := mustRunJSON[[]types.Offer](env, "offer", "list", "--status", types.OfferActive)
	assert.Empty(t, active)
}

func TestOfferErrors(t *testing.T) {
	env := newTestEnv(t)
	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Lamp")

	res := env.run("offer", "add", "no-such-ref", "--price", "5")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), `ref "no-such-ref" not found`)

	res = env.run("offer", "add", ref.ID)
	assert.Equal(t, exitUserError, res.ExitCode, "price is required")

	res = env.run("offer", "add", ref.ID, "--price", "-1")
	assert.ErrorIs(t, res.Err, types.ErrInvalidPrice)

	res = env.run("offer", "add", ref.ID, "--price", "1", "--currency", "usd")
	assert.ErrorIs(t, res.Err, types.ErrInvalidCurrency)

	res = env.run("offer", "sell", "no-such-offer")
	assert.Contains(t, res.Err.Error(), "not found")
}

func TestAnnounce(t *testing.T) {
	env := newTestEnv(t)
	listed := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Civic", "--category", "Vehicles", "--subcategory", "Cars",
		"--lat", "37.77493", "--lng", "-122.41942", "--address", "1 Market St", "--status", types.ListingForSale)
	private := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Heirloom")
	cheap := mustRunJSON[types.Offer](env, "offer", "add", listed.ID, "--price", "9000")
	gone := mustRunJSON[types.Offer](env, "offer", "add", listed.ID, "--price", "9500")
	env.mustRun("offer", "withdraw", gone.ID)

	msg := parseJSON[types.PeerMessage](t, env.mustRun("ref", "announce").Stdout)
	assert.Equal(t, types.MessageAnnounce, msg.Type)
	assert.Equal(t, listed.BeaconID, msg.BeaconID)
	assert.NotContains(t, string(msg.Payload), "1 Market St")

	v, err := msg.DecodePayload()
	require.NoError(t, err)
	payload := v.(types.AnnouncePayload)
	require.Len(t, payload.Refs, 1)
	assert.Equal(t, listed.ID, payload.Refs[0].ID)
	assert.Equal(t, 37.77, *payload.Refs[0].Lat)
	assert.Equal(t, -122.42, *payload.Refs[0].Lng)
	require.Len(t, payload.Offers, 1)
	assert.Equal(t, cheap.ID, payload.Offers[0].ID)

	res := env.run("ref", "announce", private.ID)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "not listed")

	query := fmt.Sprintf(`{"type":"query","beaconId":"peer-1","payload":{"category":"Vehicles","maxPrice":%d}}`, 8000)
	resp := parseJSON[types.PeerMessage](t, env.runWithInput(query, "ref", "announce", "--query", "-").Stdout)
	assert.Equal(t, types.MessageResponse, resp.Type)
	v, err = resp.DecodePayload()
	require.NoError(t, err)
	assert.Empty(t, v.(types.AnnouncePayload).Refs)

	queryFile := writeTemp(t, "query.json", `{"type":"query","beaconId":"peer-1","payload":{"search":"civic","maxPrice":9000}}`)
	resp = parseJSON[types.PeerMessage](t, env.mustRun("ref", "announce", "--query", queryFile).Stdout)
	v, err = resp.DecodePayload()
	require.NoError(t, err)
	assert.Len(t, v.(types.AnnouncePayload).Refs, 1)

	notQuery := writeTemp(t, "announce.json", `{"type":"announce","beaconId":"peer-1","payload":{"refs":[],"offers":[]}}`)
	res = env.run("ref", "announce", "--query", notQuery)
	require.Error(t, res.Err)
}

func TestMedia(t *testing.T) {
	env := newTestEnv(t)
	ref := mustRunJSON[types.Ref](env, "ref", "add", "--name", "Chair")
	front := writeTemp(t, "front.jpg", "jpeg bytes")
	clip := writeTemp(t, "walkaround.mp4", "video bytes")
	notes := writeTemp(t, "notes.txt", "text")

	photo := mustRunJSON[types.RefMedia](env, "media", "add", ref.ID, front, "--sort", "2")
	assert.Equal(t, types.MediaPhoto, photo.MediaType)
	assert.Equal(t, "image/jpeg", photo.MimeType)
	assert.Equal(t, int64(len("jpeg bytes")), photo.FileSize)
	assert.Equal(t, front, photo.FilePath)

	video := mustRunJSON[types.RefMedia](env, "media", "add", ref.ID, clip, "--sort", "1")
	assert.Equal(t, types.MediaVideo, video.MediaType)

	res := env.run("media", "add", ref.ID, notes)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "--type")

	forced := mustRunJSON[types.RefMedia](env, "media", "add", ref.ID, notes, "--type", types.MediaPhoto, "--sort", "3")
	assert.Equal(t, types.MediaPhoto, forced.MediaType)

	all := mustRunJSON[[]types.RefMedia](env, "media", "list", ref.ID)
	require.Len(t, all, 3)
	assert.Equal(t, []string{video.ID, photo.ID, forced.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	photos := mustRunJSON[[]types.RefMedia](env, "media", "list", ref.ID, "--type", types.MediaPhoto)
	assert.Len(t, photos, 2)

	env.mustRun("media", "remove", forced.ID)
	assert.Len(t, mustRunJSON[[]types.RefMedia](env, "media", "list", ref.ID), 2)
	assert.FileExists(t, notes)

	res = env.run("media", "add", "no-such-ref", front)
	assert.Contains(t, res.Err.Error(), "not found")

	res = env.run("media", "add", ref.ID, filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, res.Err)

	detail := mustRunJSON[refDetail](env, "ref", "get", ref.ID)
	assert.Len(t, detail.Media, 2)
}

func TestGeo(t *testing.T) {
	env := newTestEnv(t)

	d := mustRunJSON[distanceResult](env, "geo", "distance", "--", "37.7749", "-122.4194", "34.0522", "-118.2437")
	assert.InDelta(t, 347.4, d.Miles, 1.0)

	zero := mustRunJSON[distanceResult](env, "geo", "distance", "10", "10", "10", "10")
	assert.Equal(t, 0.0, zero.Miles)

	b := mustRunJSON[types.Point](env, "geo", "blur", "--", "37.77493", "-122.41942")
	assert.Equal(t, types.Point{Lat: 37.77, Lng: -122.42}, b)

	res := env.mustRun("geo", "blur", "--", "37.77493", "-122.41942")
	assert.Equal(t, "37.77,-122.42\n", res.Stdout)

	res = env.run("geo", "distance", "north", "0", "0", "0")
	assert.Equal(t, exitUserError, res.ExitCode)
}

func TestNonFiniteInputs(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	tests := []struct {
		name string
		args []string
	}{
		{"jsonld NaN price", []string{"jsonld", "--price", "NaN"}},
		{"jsonld infinite price", []string{"jsonld", "--price", "Inf"}},
		{"jsonld infinite attribute", []string{"jsonld", "--category", "Vehicles", "--subcategory", "Cars", "--attr", "mileage=Inf"}},
		{"geo distance NaN", []string{"geo", "distance", "NaN", "0", "0", "0"}},
		{"geo blur infinite", []string{"geo", "blur", "--", "-Inf", "0"}},
		{"offer infinite price", []string{"offer", "add", "ref-1", "--price", "+Inf"}},
		{"ref NaN latitude", []string{"ref", "add", "--name", "Bike", "--lat", "NaN", "--lng", "1"}},
		{"ref infinite deposit", []string{"ref", "add", "--name", "Bike", "--rental-deposit", "Inf"}},
		{"ref list infinite radius", []string{"ref", "list", "--near", "1,1", "--radius", "Inf"}},
		{"ref list NaN point", []string{"ref", "list", "--near", "NaN,1"}},
		{"counter infinite price", []string{"negotiate", "respond", "n-1", "--counter", "Inf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(tt.args...)
			require.Error(t, res.Err)
			assert.Contains(t, res.Err.Error(), "finite")
			assert.Equal(t, exitUserError, res.ExitCode)
		})
	}

	assert.Empty(t, mustRunJSON[[]types.Ref](env, "ref", "list"))
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("37.5, -122.25")
	require.NoError(t, err)
	assert.Equal(t, types.Point{Lat: 37.5, Lng: -122.25}, p)

	for _, s := range []string{"", "37.5", "a,b", "1,", "NaN,1", "1,Inf"} {
		_, err := parsePoint(s)
		assert.Error(t, err, s)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(errors.New("bad flag")))
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("disk"))))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("wrapped: %w", sysError(errors.New("disk")))))
	assert.Nil(t, sysError(nil))
}

func TestParseAttributes(t *testing.T) {
	cars := schema.GetCategorySchema("Vehicles", "Cars")

	attrs, err := parseAttributes(cars, []string{"year=2019", "transmission=cvt", "color=red", "vin="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"year": 2019.0, "transmission": "cvt", "color": "red", "vin": nil}, attrs)
	assert.Equal(t, map[string]any{"year": 2019.0, "transmission": "cvt", "color": "red"}, dropNil(attrs))

	attrs, err = parseAttributes(cars, nil)
	require.NoError(t, err)
	assert.Nil(t, attrs)

	_, err = parseAttributes(cars, []string{"=x"})
	assert.Error(t, err)
}
