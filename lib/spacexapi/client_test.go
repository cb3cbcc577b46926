package spacexapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spacey-pipeline/lib/source"
	"spacey-pipeline/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const launchListJson = `[
	{
		"rocket": "rocket-1",
		"payloads": ["payload-1"],
		"launchpad": "pad-1",
		"cores": [{
			"core": "core-1",
			"flight": 1,
			"gridfins": false,
			"reused": false,
			"legs": false,
			"landpad": null,
			"landing_success": null,
			"landing_type": null
		}],
		"flight_number": 1,
		"date_utc": "2010-06-04T18:45:00.000Z"
	}
]`

func TestFetchLaunchesPrefersSnapshot(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:spacexapi")
	defer cleanup()

	liveCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, launchListJson)
	})
	mux.HandleFunc("/launches/past", func(w http.ResponseWriter, r *http.Request) {
		liveCalls++
		fmt.Fprint(w, launchListJson)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Options{
		BaseUrl:     server.URL,
		SnapshotUrl: server.URL + "/snapshot.json",
	})

	launches, err := client.FetchLaunches(context.Background())
	require.NoError(t, err)
	require.Len(t, launches, 1)
	require.Equal(t, 0, liveCalls)

	require.Equal(t, "rocket-1", launches[0].Rocket)
	require.Equal(t, []string{"payload-1"}, launches[0].Payloads)
	require.Len(t, launches[0].Cores, 1)
	require.Equal(t, "core-1", launches[0].Cores[0].Core)
	require.Nil(t, launches[0].Cores[0].LandingSuccess)
}

func TestFetchLaunchesFallsBackToLive(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:spacexapi")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/launches/past", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, launchListJson)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Options{
		BaseUrl:     server.URL,
		SnapshotUrl: server.URL + "/snapshot.json",
	})

	launches, err := client.FetchLaunches(context.Background())
	require.NoError(t, err)
	require.Len(t, launches, 1)
}

func TestFetchLaunchesAllSourcesFail(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:spacexapi")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Options{
		BaseUrl:     server.URL,
		SnapshotUrl: server.URL + "/snapshot.json",
	})

	_, err := client.FetchLaunches(context.Background())
	require.Error(t, err)

	var unavailable *source.UnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Len(t, unavailable.Attempted, 2)
}

func TestFetchLaunchesEmptyListIsFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:spacexapi")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})
	mux.HandleFunc("/launches/past", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, launchListJson)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Options{
		BaseUrl:     server.URL,
		SnapshotUrl: server.URL + "/snapshot.json",
	})

	launches, err := client.FetchLaunches(context.Background())
	require.NoError(t, err)
	require.Len(t, launches, 1)
}
