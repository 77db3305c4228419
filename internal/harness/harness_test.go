package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagecache/internal/ingest"
	"github.com/roach88/pagecache/internal/record"
	"github.com/roach88/pagecache/internal/state"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Outputs, len(scenario.Selections))
		})
	}
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/embedded_parent.yaml")
	require.NoError(t, err)

	assert.Equal(t, "embedded_parent", scenario.Name)
	require.NotNil(t, scenario.Fixture)
	assert.Len(t, scenario.Fixture.Resources, 2)
	assert.Equal(t, state.Binding{CacheID: "test/", Page: 1}, scenario.Fixture.RequestsByName["test"])

	qf := scenario.Fixture.RequestsByQuery["test/"][1]
	assert.Equal(t, "resolved", qf.Status)
	assert.Equal(t, Positions{0}, qf.Data)
	assert.Nil(t, qf.Error)

	require.Len(t, scenario.Selections, 2)
	assert.Equal(t, "test/", scenario.Selections[1].CacheID)
	assert.True(t, scenario.Selections[1].Raw)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		path     string
		contains string
	}{
		{"testdata/invalid/bad_status.yaml", "bad_status.yaml"},
		{"testdata/invalid/typo.yaml", "typo.yaml"},
		{"testdata/invalid/float.yaml", "float.yaml"},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			_, err := LoadScenario(tt.path)
			require.Error(t, err)

			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestParseScenario_SelectionRules(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "name and cacheID",
			yaml: "name: x\nselections:\n  - { name: a, cacheID: b/ }\n",
			want: "mutually exclusive",
		},
		{
			name: "neither",
			yaml: "name: x\nselections:\n  - { raw: true }\n",
			want: "name or cacheID is required",
		},
		{
			name: "page with name",
			yaml: "name: x\nselections:\n  - { name: a, page: 2 }\n",
			want: "page requires cacheID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario("inline.yaml", []byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseScenario_EmptySelections(t *testing.T) {
	_, err := ParseScenario("inline.yaml", []byte("name: x\nselections: []\n"))
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}

func TestPositionsAndErrorInfo(t *testing.T) {
	fixture, err := ParseFixture("inline.yaml", []byte(`
requestsByQuery:
  a/:
    1: { status: pending, data: false, error: false }
    2: { status: resolved, data: [] }
    3: { status: error, error: { code: nope } }
`))
	require.NoError(t, err)

	s, err := fixture.Snapshot()
	require.NoError(t, err)

	pending, _ := s.RequestsByQuery.Get("a/", 1)
	assert.Nil(t, pending.Data)
	assert.Nil(t, pending.Error)

	empty, _ := s.RequestsByQuery.Get("a/", 2)
	require.NotNil(t, empty.Data)
	assert.Empty(t, empty.Data)

	failed, _ := s.RequestsByQuery.Get("a/", 3)
	assert.Equal(t, record.Object{"code": record.String("nope")}, failed.Error)
}

func TestFixtureSnapshot_Nil(t *testing.T) {
	var f *Fixture
	s, err := f.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, s.Resources.Len())
}

func TestRun_ExpectationFailure(t *testing.T) {
	scenario, err := ParseScenario("inline.yaml", []byte(`
name: failing
selections:
  - name: test
    expect:
      status: resolved
`))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "name:test at $.status")
	assert.Contains(t, result.Errors[0], `Expected: "resolved"`)
	assert.Contains(t, result.Errors[0], `Actual: "pending"`)
}

func TestRun_InvalidSignalSequence(t *testing.T) {
	scenario, err := ParseScenario("inline.yaml", []byte(`
name: unknown
signals:
  - { kind: request_failed, uid: posts/, page: 1 }
selections:
  - name: test
`))
	require.NoError(t, err)

	_, err = Run(scenario)
	assert.ErrorIs(t, err, ingest.ErrUnknownRequest)
}

func TestMatchSubset(t *testing.T) {
	actual := record.Object{
		"status": record.String("resolved"),
		"data": record.List{
			record.Object{"id": record.Int(1), "title": record.String("lol")},
		},
		"error": record.Bool(false),
	}

	assert.NoError(t, matchSubset("s", actual, record.Object{}))
	assert.NoError(t, matchSubset("s", actual, record.Object{
		"data": record.List{record.Object{"id": record.Int(1)}},
	}))

	err := matchSubset("s", actual, record.Object{"data": record.List{}})
	var me *MatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "$.data", me.Path)

	err = matchSubset("s", actual, record.Object{"missing": record.Null{}})
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "missing", me.Actual)

	err = matchSubset("s", actual, record.Object{
		"data": record.List{record.Object{"id": record.Int(2)}},
	})
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "$.data[0].id", me.Path)

	rated := record.Object{"rating": record.Float(2)}
	assert.NoError(t, matchSubset("s", rated, record.Object{"rating": record.Int(2)}))
	assert.Error(t, matchSubset("s", rated, record.Object{"rating": record.Float(2.5)}))
}
