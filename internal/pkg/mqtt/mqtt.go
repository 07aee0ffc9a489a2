package mqtt

import (
	"errors"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/config"
)

type Service struct {
	client             paho_mqtt.Client
	cfg                *config.MqttConfig
	logger             *zap.Logger
	configuredEntities map[string]struct{}
}

func New(client paho_mqtt.Client, cfg *config.MqttConfig) *Service {
	return &Service{
		client:             client,
		cfg:                cfg,
		logger:             zap.L(),
		configuredEntities: make(map[string]struct{}),
	}
}

func (s *Service) Connect() error {
	token := s.client.Connect()
	res := token.WaitTimeout(time.Second * 5)
	if res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return errors.New("unable to connect in time")
}
