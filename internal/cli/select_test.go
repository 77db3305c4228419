package cli

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectByNameText(t *testing.T) {
	out, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--name", "test")
	require.NoError(t, err)

	want := `{"cacheID":"test/","data":[{"_embedded":{"parent":2},"_links":{"parent":{"url":"http://dumb.com/test/2"}},"id":1,"parent":{"id":2,"title":"lol 2"},"title":"lol"}],"error":false,"operation":"get","page":1,"requestAt":1500000000000,"status":"resolved"}`
	assert.Equal(t, want+"\n", out)
}

func TestSelectRawByCoordinates(t *testing.T) {
	out, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--cache-id", "test/", "--raw")
	require.NoError(t, err)
	assert.Equal(t, `{"cacheID":"test/","data":[0],"error":false,"operation":"get","page":1,"requestAt":1500000000000,"status":"resolved"}`+"\n", out)
}

func TestSelectPendingPage(t *testing.T) {
	out, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--cache-id", "test/", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"status":"pending"`)
	assert.Contains(t, out, `"data":false`)
}

func TestSelectUnknownName(t *testing.T) {
	out, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--name", "nope")
	require.NoError(t, err)
	assert.Equal(t, `{"data":false,"error":false,"status":"pending"}`+"\n", out)
}

func TestSelectJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "select", "--fixture", "testdata/fixture.yaml", "--name", "test")
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "name:test", data["selection"])
	assert.Equal(t, false, data["raw"])
	assert.NotContains(t, data, "memo")

	output, ok := data["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "resolved", output["status"])
	assert.Len(t, output["data"], 1)
}

func TestSelectMetrics(t *testing.T) {
	out, err := execute(t, "--format", "json", "select", "--fixture", "testdata/fixture.yaml", "--name", "test", "--metrics")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	counters, ok := data["memo"].(map[string]any)
	require.True(t, ok, "memo counters missing from %s", out)

	// The first pass misses every cell, the second is answered by the
	// outermost cells.
	assert.Equal(t, map[string]any{
		`pagecache_memo_misses_total{cell="request_raw.indexes"}`: 1.0,
		`pagecache_memo_misses_total{cell="request_raw.output"}`:  1.0,
		`pagecache_memo_misses_total{cell="request.output"}`:      1.0,
		`pagecache_memo_hits_total{cell="request_raw.indexes"}`:   1.0,
		`pagecache_memo_hits_total{cell="request.output"}`:        1.0,
	}, counters)
}

func TestSelectWithoutMetricsEvaluatesOnce(t *testing.T) {
	out, err := execute(t, "--format", "json", "select", "--fixture", "testdata/fixture.yaml", "--name", "test")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	assert.NotContains(t, data, "memo")
}

func TestSelectMetricsText(t *testing.T) {
	out, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--name", "test", "--metrics")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "{"))
	assert.Contains(t, out, `pagecache_memo_hits_total{cell="request.output"} 1`)
}

func TestSelectRequiresDescriptor(t *testing.T) {
	_, err := execute(t, "select", "--fixture", "testdata/fixture.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "one of --name or --cache-id is required")
}

func TestSelectNameAndCacheIDExclusive(t *testing.T) {
	_, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--name", "test", "--cache-id", "test/")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestSelectMissingFixture(t *testing.T) {
	_, err := execute(t, "select", "--fixture", "testdata/nope.yaml", "--name", "test")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load fixture")
}

func TestSelectInvalidFixture(t *testing.T) {
	_, err := execute(t, "select", "--fixture", "testdata/signals.yaml", "--name", "test")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSelectGolden(t *testing.T) {
	out, err := execute(t, "select", "--fixture", "testdata/fixture.yaml", "--name", "test")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "select_name", []byte(strings.TrimSuffix(out, "\n")))
}
