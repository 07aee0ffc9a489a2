package mqtt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
	"github.com/anicoll/anthem-integration/internal/pkg/model"
)

// gateway is the command surface of a device session. Commands are
// fire-and-forget: the confirmed state arrives on the state topics once the
// device reports back.
type gateway interface {
	SetPower(zone int, on bool) error
	SetMute(zone int, muted bool) error
	SetVolume(zone int, fraction float64) error
	StepVolume(zone int, direction avr.Direction) error
	SelectSource(zone int, name string) error
	SelectSoundMode(name string) error
	SetARC(on bool) error
}

// SubscribeCommands listens on the device's command topics:
//
//	<prefix>/<device>/zone/<n>/{power,mute,volume,volume_step,source}
//	<prefix>/<device>/device/{sound_mode,arc}
func (s *Service) SubscribeCommands(device model.Device, gw gateway) error {
	deviceEntity := &model.Entity{ID: device.MAC, Device: device}
	filter := fmt.Sprintf("%s/%s/#", s.cfg.CommandPrefix, deviceEntity.Slug())

	token := s.client.Subscribe(filter, 1, func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
		if err := s.handleCommand(gw, msg.Topic(), string(msg.Payload())); err != nil {
			s.logger.Error("failed to handle command",
				zap.Error(err),
				zap.String("topic", msg.Topic()),
				zap.ByteString("payload", msg.Payload()))
		}
	})
	if res := token.WaitTimeout(time.Second * 5); !res {
		return fmt.Errorf("subscribe to %s timed out", filter)
	}
	return token.Error()
}

func (s *Service) handleCommand(gw gateway, topic, payload string) error {
	parts := strings.Split(topic, "/")
	// <prefix>/<device>/zone/<n>/<cmd> or <prefix>/<device>/device/<cmd>
	if len(parts) < 4 {
		return fmt.Errorf("malformed command topic %s", topic)
	}

	switch parts[2] {
	case "zone":
		if len(parts) != 5 {
			return fmt.Errorf("malformed zone command topic %s", topic)
		}
		zone, err := strconv.Atoi(parts[3])
		if err != nil {
			return fmt.Errorf("bad zone in topic %s: %w", topic, err)
		}
		return s.zoneCommand(gw, zone, parts[4], payload)

	case "device":
		switch parts[3] {
		case "sound_mode":
			return gw.SelectSoundMode(payload)
		case "arc":
			return gw.SetARC(payload == "on")
		}
	}
	return fmt.Errorf("unknown command topic %s", topic)
}

func (s *Service) zoneCommand(gw gateway, zone int, command, payload string) error {
	switch command {
	case "power":
		return gw.SetPower(zone, payload == "on")
	case "mute":
		return gw.SetMute(zone, payload == "on" || payload == "true")
	case "volume":
		fraction, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return fmt.Errorf("bad volume payload %q: %w", payload, err)
		}
		return gw.SetVolume(zone, fraction)
	case "volume_step":
		direction := avr.VolumeUp
		if payload == "down" {
			direction = avr.VolumeDown
		}
		return gw.StepVolume(zone, direction)
	case "source":
		return gw.SelectSource(zone, payload)
	}
	return fmt.Errorf("unknown zone command %q", command)
}
