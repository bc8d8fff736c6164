package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/internal/engine/node"
)

func parseTestScenario(t *testing.T) *Scenario {
	t.Helper()
	sc, err := Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	return sc
}

func TestRunJourneys(t *testing.T) {
	res, err := Run(parseTestScenario(t))
	require.NoError(t, err)

	require.Len(t, res.Journeys, 4)
	assert.Equal(t, uint64(3), res.Revision)

	// [0] is untouched by an insert at [1], a split inside itself, and a
	// removal after it.
	first := res.Journeys[0]
	assert.True(t, first.Alive)
	assert.Equal(t, 0, first.Moves)
	assert.Equal(t, "[0]", first.Where)
	assert.Equal(t, -1, first.KilledBy)
	assert.Len(t, first.Visits, 3)

	// [1] is pushed to [2] by the insert, then removed.
	second := res.Journeys[1]
	assert.False(t, second.Alive)
	assert.Equal(t, 1, second.Moves)
	assert.Equal(t, 2, second.KilledBy)
	require.Len(t, second.Visits, 3)
	assert.Equal(t, "[2]", second.Visits[0].Where)
	assert.True(t, second.Visits[0].Moved)
	assert.False(t, second.Visits[2].Alive)

	// The caret rides its leaf from [1.0] to [2.0], then dies with it.
	caret := res.Journeys[2]
	assert.False(t, caret.Alive)
	assert.Equal(t, 2, caret.KilledBy)
	require.Len(t, caret.Visits, 3)
	assert.Equal(t, "[2.0]:2", caret.Visits[0].Where)

	// The outward selection spans the whole leaf, so the split stretches
	// its focus into the new right-hand node.
	sel := res.Journeys[3]
	assert.True(t, sel.Alive)
	assert.Equal(t, 1, sel.Moves)
	assert.Equal(t, "[0.0]:0 -> [0.1]:3", sel.Where)
}

func TestRunFinalTree(t *testing.T) {
	res, err := Run(parseTestScenario(t))
	require.NoError(t, err)

	require.NotNil(t, res.Final)
	require.Len(t, res.Final.Children, 2)
	assert.Equal(t, "alphamid", node.PlainText(res.Final))

	// The split leaves two leaves in the first paragraph.
	require.Len(t, res.Final.Children[0].Children, 2)
	assert.Equal(t, "al", res.Final.Children[0].Children[0].Text)
	assert.Equal(t, "pha", res.Final.Children[0].Children[1].Text)
}

func TestRunLeavesScenarioRootAlone(t *testing.T) {
	sc := parseTestScenario(t)
	_, err := Run(sc)
	require.NoError(t, err)

	// The document works on its own copy of the starting tree.
	assert.Equal(t, "alphabravo", node.PlainText(sc.Root))
}

func TestRunRejectedOperation(t *testing.T) {
	sc, err := Parse([]byte(`{
		"document": {"type": "doc", "children": [{"text": "hi"}]},
		"track": [{"path": [0]}],
		"operations": [
			{"type": "insert_text", "path": [0], "offset": 1, "text": "!"},
			{"type": "remove_node", "path": [9], "node": {"text": "gone"}}
		]
	}`))
	require.NoError(t, err)

	res, err := Run(sc)
	require.Error(t, err)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "remove_node", se.Kind)

	// The journeys cover the operations applied before the failure.
	require.NotNil(t, res)
	assert.Equal(t, uint64(1), res.Revision)
	require.Len(t, res.Journeys, 1)
	assert.Len(t, res.Journeys[0].Visits, 1)
}

func TestRunNoTracks(t *testing.T) {
	sc, err := Parse([]byte(`{
		"document": {"type": "doc", "children": [{"text": "hi"}]},
		"operations": [{"type": "insert_text", "path": [0], "offset": 2, "text": "!"}]
	}`))
	require.NoError(t, err)

	res, err := Run(sc)
	require.NoError(t, err)
	assert.Empty(t, res.Journeys)
	assert.Equal(t, "hi!", node.PlainText(res.Final))
}
