// Tests for JSONL persistence and loading.
package sqlite

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

func readAllJSONLRecords(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec), "line %q", line)
		records = append(records, rec)
	}
	return records
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestJSONL_FilesInitializedEmpty(t *testing.T) {
	dir := t.TempDir()
	attachAt(t, dir, types.Config{})

	for _, name := range []string{"refs.jsonl", "offers.jsonl", "negotiations.jsonl", "media.jsonl"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Zero(t, info.Size(), name)
	}
}

func TestJSONL_RefFormat(t *testing.T) {
	dir := t.TempDir()
	b := attachAt(t, dir, types.Config{})
	refs := table(t, b, types.TableRefs)

	id, err := refs.Set("", &types.Ref{
		Name:       "Couch",
		Location:   types.Location{Lat: ptr(40.0), City: "Denver"},
		Attributes: map[string]any{"width": 84.0, "material": "linen"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "IDs are UUIDs")

	records := readAllJSONLRecords(t, filepath.Join(dir, "refs.jsonl"))
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, id, rec["id"])
	assert.Equal(t, "Couch", rec["name"])
	assert.Equal(t, "private", rec["listing_status"])
	assert.Equal(t, 40.0, rec["location_lat"])
	assert.Nil(t, rec["location_lng"])
	assert.Equal(t, "Denver", rec["location_city"])
	assert.Equal(t, b.BeaconID(), rec["beacon_id"])
	assert.Equal(t, map[string]any{"width": 84.0, "material": "linen"}, rec["attributes"], "attributes are nested JSON")
	assert.IsType(t, "", rec["created_at"])
}

func TestJSONL_DeleteAndUpdateRewriteFile(t *testing.T) {
	dir := t.TempDir()
	b := attachAt(t, dir, types.Config{})
	refs := table(t, b, types.TableRefs)

	keep, err := refs.Set("", &types.Ref{Name: "Keep"})
	require.NoError(t, err)
	drop, err := refs.Set("", &types.Ref{Name: "Drop"})
	require.NoError(t, err)

	got, err := refs.Get(keep)
	require.NoError(t, err)
	r := got.(*types.Ref)
	r.Name = "Kept"
	_, err = refs.Set(keep, r)
	require.NoError(t, err)
	require.NoError(t, refs.Delete(drop))

	records := readAllJSONLRecords(t, filepath.Join(dir, "refs.jsonl"))
	require.Len(t, records, 1)
	assert.Equal(t, keep, records[0]["id"])
	assert.Equal(t, "Kept", records[0]["name"])

	matches, err := filepath.Glob(filepath.Join(dir, ".jsonl-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no temp files left behind")
}

func TestJSONL_DataPersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	refs := table(t, b, types.TableRefs)

	refID, err := refs.Set("", &types.Ref{
		Name:               "Cabin",
		Category:           "Housing",
		Subcategory:        "Single Family Homes",
		ListingStatus:      types.ListingForRent,
		Quantity:           1,
		ReffoSynced:        true,
		ReffoRefID:         "remote-1",
		Location:           types.Location{Lat: ptr(39.5), Lng: ptr(-106.0)},
		SellingScope:       types.ScopeRange,
		SellingRadiusMiles: ptr(50.0),
		Attributes:         map[string]any{"bedrooms": 3.0, "pool": false},
		Condition:          "move_in_ready",
		RentalTerms:        "No pets",
		RentalDeposit:      ptr(500.0),
		RentalDuration:     ptr(2),
		RentalDurationUnit: types.DurationWeeks,
	})
	require.NoError(t, err)
	before, err := refs.Get(refID)
	require.NoError(t, err)

	offerID, err := table(t, b, types.TableOffers).Set("", &types.Offer{RefID: refID, Price: 1500})
	require.NoError(t, err)
	negID, err := table(t, b, types.TableNegotiations).Set("", &types.Negotiation{RefID: refID, Price: 1400, Role: types.RoleSeller, CounterPrice: ptr(1450.0)})
	require.NoError(t, err)
	mediaID, err := table(t, b, types.TableMedia).Set("", &types.RefMedia{RefID: refID, MediaType: types.MediaPhoto, FilePath: "cabin.jpg", SortOrder: 3})
	require.NoError(t, err)
	beaconID := b.BeaconID()
	require.NoError(t, b.Detach())

	b2 := attachAt(t, dir, types.Config{})
	assert.Equal(t, beaconID, b2.BeaconID())

	after, err := table(t, b2, types.TableRefs).Get(refID)
	require.NoError(t, err)
	assert.Equal(t, before, after, "ref round-trips through JSONL")

	o, err := table(t, b2, types.TableOffers).Get(offerID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, o.(*types.Offer).Price)

	n, err := table(t, b2, types.TableNegotiations).Get(negID)
	require.NoError(t, err)
	require.NotNil(t, n.(*types.Negotiation).CounterPrice)
	assert.Equal(t, 1450.0, *n.(*types.Negotiation).CounterPrice)

	m, err := table(t, b2, types.TableMedia).Get(mediaID)
	require.NoError(t, err)
	assert.Equal(t, 3, m.(*types.RefMedia).SortOrder)
}

func TestJSONL_LoadTolerance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "refs.jsonl", `{"id":"ref-1","name":"Lamp","listing_status":"private","beacon_id":"b","created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z","future_field":"ignored"}
not json at all

{"id":"ref-2","listing_status":"private","beacon_id":"b","created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z"}
{"id":"ref-3","name":"Rug","listing_status":"private","beacon_id":"b","created_at":"2025-01-15T10:31:00Z","updated_at":"2025-01-15T10:31:00Z","attributes":{"size":"8x10"}}
`)
	writeFile(t, dir, "offers.jsonl", `{"id":"offer-1","ref_id":"ref-1","price":20,"price_currency":"USD","status":"active","seller_id":"b","created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z"}
{"id":"offer-orphan","ref_id":"gone","price":20,"price_currency":"USD","status":"active","seller_id":"b","created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z"}
`)

	b := attachAt(t, dir, types.Config{})
	refs := table(t, b, types.TableRefs)

	all, err := refs.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 2, "malformed lines and records missing required columns are skipped")
	assert.Equal(t, "ref-3", all[0].(*types.Ref).ID)
	assert.Equal(t, map[string]any{"size": "8x10"}, all[0].(*types.Ref).Attributes)
	assert.Equal(t, "ref-1", all[1].(*types.Ref).ID)

	offers, err := table(t, b, types.TableOffers).Fetch(nil)
	require.NoError(t, err)
	require.Len(t, offers, 1, "orphaned offers are dropped")
	assert.Equal(t, "offer-1", offers[0].(*types.Offer).ID)
}

func TestJSONL_ReadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.jsonl")
	writeFile(t, dir, "x.jsonl", "{\"a\":1}\n{broken\n\n{\"b\":2}\n")

	records, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"a":1}`, string(records[0]))
	assert.JSONEq(t, `{"b":2}`, string(records[1]))

	_, err = readJSONL(filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, err)
}

func TestJSONL_WriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.jsonl")
	writeFile(t, dir, "x.jsonl", "{\"old\":true}\n")

	require.NoError(t, writeJSONL(path, []json.RawMessage{json.RawMessage(`{"new":1}`), json.RawMessage(`{"new":2}`)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"new\":1}\n{\"new\":2}\n", string(data))

	require.NoError(t, writeJSONL(path, nil))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
