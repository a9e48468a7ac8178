package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/bangalore-local/internal/catalog"
)

type stubCatalog struct {
	list []catalog.Business
	err  error
}

func (s stubCatalog) Categories(context.Context) ([]string, error) { return nil, nil }
func (s stubCatalog) Locations(context.Context) ([]string, error)  { return nil, nil }
func (s stubCatalog) Businesses(context.Context, catalog.Query) ([]catalog.Business, error) {
	return s.list, s.err
}
func (s stubCatalog) SubmitContact(context.Context, url.Values) (catalog.ContactReply, error) {
	return catalog.ContactReply{}, nil
}

func coord(v float64) *float64 { return &v }

func businesses() []catalog.Business {
	return []catalog.Business{
		{ID: "1", Name: "Meghana Foods", Category: "Restaurants", Location: "Koramangala", Rating: 4.5, Lat: coord(12.9352), Lng: coord(77.6245)},
		{ID: "2", Name: "Cubbon Park Walks", Category: "Outdoors", Location: "Central", Rating: 4},
		{ID: "3", Name: "Toit", Category: "Restaurants", Location: "Indiranagar", Rating: 4.7, Lat: coord(12.9791), Lng: coord(77.6408)},
	}
}

func newTestController(t *testing.T, svc catalog.Service) (*Controller, *Scene) {
	t.Helper()
	scene := NewScene()
	ctrl := NewController(svc, scene, scene, scene, WithRand(rand.New(rand.NewSource(7))))
	return ctrl, scene
}

func ops(cmds []Command) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Op)
	}
	return out
}

func TestReadyBuildsMapAndMarkers(t *testing.T) {
	t.Parallel()

	ctrl, scene := newTestController(t, stubCatalog{list: businesses()})
	require.NoError(t, ctrl.Ready(context.Background()))

	cmds := scene.Drain()
	require.Equal(t, []string{OpCreateMap, OpAddMarker, OpAddMarker, OpAddMarker, OpFitBounds}, ops(cmds))

	created := cmds[0].Map
	require.Equal(t, DefaultCenter, created.Center)
	require.Equal(t, DefaultZoom, created.Zoom)
	require.Len(t, created.Styles, 8)
	require.Equal(t, "water", created.Styles[7].FeatureType)

	first := cmds[1].Marker
	require.Equal(t, "Meghana Foods", first.Title)
	require.Equal(t, LatLng{Lat: 12.9352, Lng: 77.6245}, first.Position)
	require.True(t, first.Drop)
	require.Equal(t, "#4361ee", first.Icon.FillColor)
	require.Equal(t, catalog.ID("1"), first.Business)
	placed, ok := scene.MarkerFor(cmds[1].MarkerID)
	require.True(t, ok)
	require.Equal(t, "Meghana Foods", placed.Title)

	synthetic := cmds[2].Marker.Position
	require.InDelta(t, DefaultCenter.Lat, synthetic.Lat, JitterSpan/2)
	require.InDelta(t, DefaultCenter.Lng, synthetic.Lng, JitterSpan/2)

	bounds := cmds[4].Bounds
	for _, c := range cmds[1:4] {
		require.True(t, bounds.Contains(c.Marker.Position))
	}

	sidebar := scene.Sidebar()
	require.Equal(t, SidebarEntries, sidebar.Mode)
	require.Equal(t, []catalog.ID{"1", "2", "3"}, ctrl.Entries())
	require.Equal(t, "Cubbon Park Walks", sidebar.Entries[1].Name)
	require.Equal(t, "4", sidebar.Entries[1].Rating)
}

func TestSingleMarkerZoomsIn(t *testing.T) {
	t.Parallel()

	ctrl, scene := newTestController(t, stubCatalog{list: businesses()[:1]})
	require.NoError(t, ctrl.Ready(context.Background()))

	cmds := scene.Drain()
	require.Equal(t, []string{OpCreateMap, OpAddMarker, OpFitBounds, OpSetZoom}, ops(cmds))
	require.Equal(t, SingleMarkerZoom, cmds[3].Zoom)
}

func TestEmptyAndFailedLoads(t *testing.T) {
	t.Parallel()

	ctrl, scene := newTestController(t, stubCatalog{list: []catalog.Business{}})
	require.NoError(t, ctrl.Ready(context.Background()))
	require.Equal(t, []string{OpCreateMap}, ops(scene.Drain()))
	require.Equal(t, Sidebar{Mode: SidebarMessage, Message: msgEmpty}, scene.Sidebar())

	failure := &catalog.HTTPError{Op: "businesses", Status: 500}
	ctrl, scene = newTestController(t, stubCatalog{err: failure})
	require.ErrorIs(t, ctrl.Ready(context.Background()), failure)
	require.Equal(t, Sidebar{Mode: SidebarError, Message: msgLoadError}, scene.Sidebar())
}

func TestLoadBeforeReady(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, stubCatalog{list: businesses()})
	require.ErrorIs(t, ctrl.Load(context.Background()), ErrNotReady)
	require.ErrorIs(t, ctrl.SelectMarker("1"), ErrNotReady)
}

func TestSelectionKeepsOnePopup(t *testing.T) {
	t.Parallel()

	ctrl, scene := newTestController(t, stubCatalog{list: businesses()})
	require.NoError(t, ctrl.Ready(context.Background()))
	placed := scene.Drain()
	toitMarker := placed[3].MarkerID

	require.NoError(t, ctrl.SelectMarker("1"))
	cmds := scene.Drain()
	require.Equal(t, []string{OpClosePopup, OpOpenPopup}, ops(cmds))
	popup := cmds[1].Popup
	require.Equal(t, "Meghana Foods", popup.Name)
	require.Equal(t, "Restaurants · Koramangala", popup.Meta)
	require.Equal(t, []string{"fas fa-star", "fas fa-star", "fas fa-star", "fas fa-star", "fas fa-star-half-alt"}, popup.StarClass)
	require.Equal(t, "/business/1", popup.DetailsURL)

	require.NoError(t, ctrl.SelectEntry("3"))
	cmds = scene.Drain()
	require.Equal(t, []string{OpPanTo, OpSetZoom, OpClosePopup, OpOpenPopup}, ops(cmds))
	require.Equal(t, LatLng{Lat: 12.9791, Lng: 77.6408}, *cmds[0].Position)
	require.Equal(t, FocusZoom, cmds[1].Zoom)
	require.Equal(t, toitMarker, cmds[3].MarkerID, "entry opens the popup of its own marker")

	open, ok := scene.OpenPopupMarker()
	require.True(t, ok)
	require.Equal(t, toitMarker, open)

	require.ErrorIs(t, ctrl.SelectEntry("99"), ErrUnknownBusiness)
}

func TestDuplicateIDsPlaceOneMarkerAndEntry(t *testing.T) {
	t.Parallel()

	list := []catalog.Business{
		{ID: "1", Name: "A", Category: "Cafes", Location: "Jayanagar", Rating: 4, Lat: coord(12.93), Lng: coord(77.58)},
		{ID: "1", Name: "B", Category: "Cafes", Location: "Jayanagar", Rating: 3, Lat: coord(12.94), Lng: coord(77.59)},
		{ID: "2", Name: "C", Category: "Cafes", Location: "Jayanagar", Rating: 5, Lat: coord(12.95), Lng: coord(77.60)},
	}
	ctrl, scene := newTestController(t, stubCatalog{list: list})
	require.NoError(t, ctrl.Ready(context.Background()))
	scene.Drain()

	require.Equal(t, 2, scene.MarkerCount())
	sidebar := scene.Sidebar()
	require.Len(t, sidebar.Entries, 2)
	require.Equal(t, []catalog.ID{"1", "2"}, ctrl.Entries())

	require.NoError(t, ctrl.SelectEntry("1"))
	cmds := scene.Drain()
	require.Equal(t, "A", cmds[len(cmds)-1].Popup.Name)
}

func TestSceneEncodesZeroPaddedIDs(t *testing.T) {
	t.Parallel()

	list := []catalog.Business{{ID: "007", Name: "Bond Bakery", Category: "Bakeries", Location: "Frazer Town", Rating: 4.1}}
	ctrl, scene := newTestController(t, stubCatalog{list: list})
	require.NoError(t, ctrl.Ready(context.Background()))

	raw, err := json.Marshal(scene.Drain())
	require.NoError(t, err)
	require.Contains(t, string(raw), `"business":"007"`)
}

func TestCenterOnMe(t *testing.T) {
	t.Parallel()

	ctrl, scene := newTestController(t, stubCatalog{list: businesses()})
	require.NoError(t, ctrl.Ready(context.Background()))
	scene.Drain()
	ctx := context.Background()

	require.ErrorIs(t, ctrl.CenterOnMe(ctx, nil), ErrUnsupported)
	require.Equal(t, []Command{{Op: OpAlert, Message: msgUnsupported}}, scene.Drain())

	err := ctrl.CenterOnMe(ctx, ReportedPosition{Err: ErrPermissionDenied})
	require.True(t, errors.Is(err, ErrPermissionDenied))
	require.Equal(t, []Command{{Op: OpAlert, Message: msgLocateFailed}}, scene.Drain())

	me := LatLng{Lat: 12.9141, Lng: 77.6411}
	require.NoError(t, ctrl.CenterOnMe(ctx, ReportedPosition{Position: me}))
	cmds := scene.Drain()
	require.Equal(t, []string{OpSetCenter, OpSetZoom, OpAddMarker}, ops(cmds))
	require.Equal(t, UserZoom, cmds[1].Zoom)
	require.Equal(t, userMarkerTitle, cmds[2].Marker.Title)
	require.Equal(t, "#4285F4", cmds[2].Marker.Icon.FillColor)
	require.Equal(t, me, cmds[2].Marker.Position)
}

func TestParseGeolocationError(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, ParseGeolocationError("denied"), ErrPermissionDenied)
	require.ErrorIs(t, ParseGeolocationError("unsupported"), ErrUnsupported)
	require.ErrorIs(t, ParseGeolocationError("timeout"), ErrPositionUnavailable)
}
