package avr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readySession returns an initialised two-zone session and the index where
// command capture starts.
func readySession(t *testing.T, conn *fakeConn) *Session {
	t.Helper()
	s := connectedSession(t, conn)
	s.onMessage([]byte("IDMMRX 720"), conn)
	s.onMessage([]byte("IDNAABBCCDDEEFF"), conn)
	return s
}

func lastCommand(t *testing.T, conn *fakeConn) string {
	t.Helper()
	cmds := conn.commands()
	require.NotEmpty(t, cmds)
	return cmds[len(cmds)-1]
}

func TestSetPowerAndMute(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	require.NoError(t, s.SetPower(2, true))
	assert.Equal(t, "Z2POW1", lastCommand(t, conn))

	require.NoError(t, s.SetPower(2, false))
	assert.Equal(t, "Z2POW0", lastCommand(t, conn))

	require.NoError(t, s.SetMute(1, true))
	assert.Equal(t, "Z1MUT1", lastCommand(t, conn))
}

func TestSetVolumeClamps(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	require.NoError(t, s.SetVolume(1, 0.55))
	assert.Equal(t, "Z1PVOL55", lastCommand(t, conn))

	require.NoError(t, s.SetVolume(1, 1.7))
	assert.Equal(t, "Z1PVOL100", lastCommand(t, conn))

	require.NoError(t, s.SetVolume(1, -0.3))
	assert.Equal(t, "Z1PVOL0", lastCommand(t, conn))
}

func TestStepVolume(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)
	s.cfg.VolumeStep = 0.05
	s.onMessage([]byte("Z1PVOL20"), conn)

	require.NoError(t, s.StepVolume(1, VolumeUp))
	assert.Equal(t, "Z1PVOL25", lastCommand(t, conn))

	require.NoError(t, s.StepVolume(1, VolumeDown))
	assert.Equal(t, "Z1PVOL15", lastCommand(t, conn))
}

func TestStepVolumeAtBoundsIsNoop(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	s.onMessage([]byte("Z1PVOL100"), conn)
	before := len(conn.commands())
	require.NoError(t, s.StepVolume(1, VolumeUp))
	assert.Len(t, conn.commands(), before, "step up at full volume sends nothing")

	s.onMessage([]byte("Z1PVOL0"), conn)
	before = len(conn.commands())
	require.NoError(t, s.StepVolume(1, VolumeDown))
	assert.Len(t, conn.commands(), before, "step down at zero sends nothing")
}

func TestStepVolumeNearBoundClampsOnWire(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)
	s.cfg.VolumeStep = 0.05

	s.onMessage([]byte("Z1PVOL98"), conn)
	require.NoError(t, s.StepVolume(1, VolumeUp))
	assert.Equal(t, "Z1PVOL100", lastCommand(t, conn))

	s.onMessage([]byte("Z1PVOL3"), conn)
	require.NoError(t, s.StepVolume(1, VolumeDown))
	assert.Equal(t, "Z1PVOL0", lastCommand(t, conn))
}

func TestStepVolumeUnknownZone(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	assert.Error(t, s.StepVolume(9, VolumeUp))
}

func TestSelectSourceResolvesKnownName(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)
	s.onMessage([]byte("ISN01Apple TV"), conn)
	s.onMessage([]byte("ISN02Blu-ray"), conn)

	require.NoError(t, s.SelectSource(1, "blu-RAY"))
	assert.Equal(t, "Z1INP02", lastCommand(t, conn))
}

func TestSelectSourceUnknownNameGoesVerbatim(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	require.NoError(t, s.SelectSource(2, "Turntable"))
	assert.Equal(t, "Z2INPTurntable", lastCommand(t, conn))
}

func TestSelectSoundMode(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	require.NoError(t, s.SelectSoundMode("dolby surround"))
	assert.Equal(t, "Z1ALM3", lastCommand(t, conn))

	require.NoError(t, s.SelectSoundMode("None"))
	assert.Equal(t, "Z1ALM0", lastCommand(t, conn))

	require.NoError(t, s.SelectSoundMode("Concert Hall"))
	assert.Equal(t, "Z1ALMConcert Hall", lastCommand(t, conn))
}

func TestSetARC(t *testing.T) {
	t.Parallel()
	conn := &fakeConn{}
	s := readySession(t, conn)

	require.NoError(t, s.SetARC(true))
	assert.Equal(t, "Z1ARC1", lastCommand(t, conn))

	require.NoError(t, s.SetARC(false))
	assert.Equal(t, "Z1ARC0", lastCommand(t, conn))
}
