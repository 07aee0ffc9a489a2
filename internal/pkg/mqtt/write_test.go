package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

func TestRegisterMessage(t *testing.T) {
	t.Parallel()
	svc := newTestService()

	entity := &model.Entity{
		ID:   "aa:bb:cc:dd:ee:ff_2",
		Name: "Theatre zone 2",
		Kind: model.EntityKindZone,
		Zone: 2,
		Device: model.Device{
			MAC:   "aa:bb:cc:dd:ee:ff",
			Model: "MRX 720",
			Name:  "Theatre",
		},
	}

	msg := svc.registerMsg(entity)
	assert.Equal(t, "homeassistant/sensor/aa_bb_cc_dd_ee_ff_2", msg.Tilda)
	assert.Equal(t, "aa_bb_cc_dd_ee_ff_2", msg.ID)
	assert.Equal(t, "Theatre zone 2", msg.Name)
	assert.Equal(t, "~/state", msg.StateTopic)
	assert.Equal(t, "MRX 720", msg.Device.Model)
	assert.Equal(t, "Anthem", msg.Device.Manufacturer)
	assert.Equal(t, []string{"aa:bb:cc:dd:ee:ff"}, msg.Device.Identifiers)
}

func TestComponentForKind(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "sensor", component(model.EntityKindZone))
	assert.Equal(t, "switch", component(model.EntityKindSwitch))
}
