package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

type memorySink struct {
	writes     [][]map[string]any
	registered []*model.Entity
	writeErr   error
}

func (m *memorySink) Write(_ context.Context, data []map[string]any) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes = append(m.writes, data)
	return nil
}

func (m *memorySink) RegisterEntity(entity *model.Entity) error {
	m.registered = append(m.registered, entity)
	return nil
}

func testEntity() *model.Entity {
	return &model.Entity{
		ID:   "aa:bb:cc:dd:ee:ff",
		Name: "Theatre",
		Kind: model.EntityKindZone,
		Zone: 1,
	}
}

func TestRegisterPublisherRejectsDuplicates(t *testing.T) {
	reset()
	sink := &memorySink{}

	require.NoError(t, RegisterPublisher("mem", sink))
	assert.ErrorIs(t, RegisterPublisher("mem", sink), errAlreadyRegistered)
}

func TestPublishStateWritesRows(t *testing.T) {
	reset()
	sink := &memorySink{}
	require.NoError(t, RegisterPublisher("mem", sink))

	err := PublishState(context.Background(), testEntity(), map[string]string{
		"state":  "on",
		"volume": "0.55",
	})
	require.NoError(t, err)
	require.Len(t, sink.writes, 1)
	assert.Len(t, sink.writes[0], 2)

	slugs := []string{}
	for _, row := range sink.writes[0] {
		slugs = append(slugs, row["slug"].(string))
		assert.Equal(t, "aa_bb_cc_dd_ee_ff", row["identifier"])
	}
	assert.ElementsMatch(t, []string{"state", "volume"}, slugs)
}

func TestPublishStateSuppressesUnchangedValues(t *testing.T) {
	reset()
	sink := &memorySink{}
	require.NoError(t, RegisterPublisher("mem", sink))

	fields := map[string]string{"state": "on", "volume": "0.55"}
	require.NoError(t, PublishState(context.Background(), testEntity(), fields))
	require.NoError(t, PublishState(context.Background(), testEntity(), fields))
	assert.Len(t, sink.writes, 1, "identical values publish nothing")

	fields["volume"] = "0.60"
	require.NoError(t, PublishState(context.Background(), testEntity(), fields))
	require.Len(t, sink.writes, 2)
	assert.Len(t, sink.writes[1], 1, "only the changed field goes out")
	assert.Equal(t, "0.60", sink.writes[1][0]["value"])
}

func TestPublishStateFansOutToAllSinks(t *testing.T) {
	reset()
	first := &memorySink{}
	second := &memorySink{}
	require.NoError(t, RegisterPublisher("first", first))
	require.NoError(t, RegisterPublisher("second", second))

	require.NoError(t, PublishState(context.Background(), testEntity(), map[string]string{"state": "on"}))
	assert.Len(t, first.writes, 1)
	assert.Len(t, second.writes, 1)
}

func TestPublishStateToleratesFailingSink(t *testing.T) {
	reset()
	broken := &memorySink{writeErr: assert.AnError}
	healthy := &memorySink{}
	require.NoError(t, RegisterPublisher("broken", broken))
	require.NoError(t, RegisterPublisher("healthy", healthy))

	err := PublishState(context.Background(), testEntity(), map[string]string{"state": "on"})
	assert.NoError(t, err, "one failing sink must not block the others")
	assert.Len(t, healthy.writes, 1)
}

func TestRegisterEntityFansOut(t *testing.T) {
	reset()
	sink := &memorySink{}
	require.NoError(t, RegisterPublisher("mem", sink))

	require.NoError(t, RegisterEntity(testEntity()))
	require.Len(t, sink.registered, 1)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", sink.registered[0].ID)
}
