package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const (
	TestAdminEmail    = "root@example.com"
	TestAdminPassword = "pa55word!"

	TestMovieTitle       = "Test Movie"
	TestMovieDescription = "A test movie description."
	TestMovieDirector    = "Jane Doe"
	TestMoviePosterUrl   = "https://example.com/poster.jpg"
	TestMovieReleaseDate = "2024-05-01"
	TestMovieDuration    = 120

	TestShowDate = "2030-06-01"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// cleanMap drops the nondeterministic keys at any depth.
func cleanMap(m map[string]any) {
	for k, v := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}

		switch nested := v.(type) {
		case map[string]any:
			cleanMap(nested)
		case []any:
			for _, item := range nested {
				if obj, ok := item.(map[string]any); ok {
					cleanMap(obj)
				}
			}
		}
	}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// do runs a request through the application router and returns the recorded
// response.
func (a *TestApp) do(t testing.TB, method, url string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req, err := prepareRequest(method, url, body, headers)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.App.Routes().ServeHTTP(rec, req)

	res := rec.Result()
	t.Cleanup(func() { res.Body.Close() })

	return res
}

func decodeBody(t testing.TB, res *http.Response, v any) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

func movieBody(title string) string {
	return fmt.Sprintf(`{
		"title": %q,
		"genre": ["Action", "Drama"],
		"releaseDate": %q,
		"duration": %d,
		"description": %q,
		"director": %q,
		"cast": ["Actor One", "Actor Two"],
		"posterUrl": %q
	}`, title, TestMovieReleaseDate, TestMovieDuration, TestMovieDescription, TestMovieDirector, TestMoviePosterUrl)
}

// createMovie adds a movie through the API and returns its id.
func (a *TestApp) createMovie(t testing.TB, token, title string) string {
	t.Helper()

	res := a.do(t, "POST", "/movie", strings.NewReader(movieBody(title)), bearer(token))
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var movie struct {
		Id string `json:"id"`
	}
	decodeBody(t, res, &movie)

	return movie.Id
}

func bookingBody(movieID, slot, name string, seats ...string) string {
	return pricedBookingBody(movieID, slot, name, "25.50", seats...)
}

func pricedBookingBody(movieID, slot, name, price string, seats ...string) string {
	seatObjects := make([]string, len(seats))
	for i, seat := range seats {
		seatObjects[i] = fmt.Sprintf(`{"seatNumber": %q}`, seat)
	}

	return fmt.Sprintf(`{
		"movie": %q,
		"date": %q,
		"slot": {"label": %q},
		"seats": [%s],
		"name": %q,
		"email": "guest@example.com",
		"totalPrice": %s
	}`, movieID, TestShowDate, slot, name, strings.Join(seatObjects, ", "), price)
}

// createBooking admits a booking through the API and returns its id.
func (a *TestApp) createBooking(t testing.TB, movieID, slot string, seats ...string) string {
	t.Helper()

	res := a.do(t, "POST", "/booking", strings.NewReader(bookingBody(movieID, slot, "Jane Guest", seats...)), nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var booking struct {
		Id string `json:"id"`
	}
	decodeBody(t, res, &booking)

	return booking.Id
}

func adminID(t testing.TB, a *TestApp) string {
	t.Helper()

	var id string
	err := a.DB.QueryRow(context.Background(),
		"SELECT id::text FROM admins WHERE email = $1", TestAdminEmail).Scan(&id)
	require.NoError(t, err)

	return id
}

func jsonReader(t testing.TB, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(data)
}
