package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/avr"
	"github.com/anicoll/anthem-integration/internal/pkg/config"
	"github.com/anicoll/anthem-integration/internal/pkg/database"
	"github.com/anicoll/anthem-integration/internal/pkg/dispatcher"
	"github.com/anicoll/anthem-integration/internal/pkg/entity"
)

type avrService interface {
	DeviceInfo() avr.DeviceInfo
	DeviceState() avr.DeviceState
	Capabilities() avr.Capabilities
	Zones() []int
	Zone(number int) (avr.ZoneState, bool)
	SetPower(zone int, on bool) error
	SetMute(zone int, muted bool) error
	SetVolume(zone int, fraction float64) error
	StepVolume(zone int, direction avr.Direction) error
	SelectSource(zone int, name string) error
	SelectSoundMode(name string) error
	SetARC(on bool) error
	Refresh() error
}

type stateStore interface {
	GetStates(ctx context.Context, identifier, slug string, from, to *time.Time) (database.States, error)
	GetLatestStates(ctx context.Context) (database.States, error)
}

type server struct {
	avrs   avrService
	bus    *dispatcher.Bus
	states stateStore
	cfg    *config.ServerConfig
	logger *zap.Logger
}

// New builds the API server. states may be nil when no database is
// configured, in which case the history routes are not registered.
func New(avrs avrService, bus *dispatcher.Bus, states stateStore, cfg *config.ServerConfig) *server {
	return &server{avrs: avrs, bus: bus, states: states, cfg: cfg, logger: zap.L()}
}

// Handler builds the routing table. Everything except the token endpoint sits
// behind bearer auth.
func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", s.postAuthToken)
	mux.Handle("GET /device", s.auth(http.HandlerFunc(s.getDevice)))
	mux.Handle("GET /zones", s.auth(http.HandlerFunc(s.getZones)))
	mux.Handle("POST /zones/{zone}/power", s.auth(s.zoneHandler(s.postZonePower)))
	mux.Handle("POST /zones/{zone}/volume", s.auth(s.zoneHandler(s.postZoneVolume)))
	mux.Handle("POST /zones/{zone}/volume/step", s.auth(s.zoneHandler(s.postZoneVolumeStep)))
	mux.Handle("POST /zones/{zone}/mute", s.auth(s.zoneHandler(s.postZoneMute)))
	mux.Handle("POST /zones/{zone}/source", s.auth(s.zoneHandler(s.postZoneSource)))
	mux.Handle("POST /device/sound-mode", s.auth(http.HandlerFunc(s.postSoundMode)))
	mux.Handle("POST /device/arc", s.auth(http.HandlerFunc(s.postARC)))
	mux.Handle("POST /device/refresh", s.auth(http.HandlerFunc(s.postRefresh)))
	mux.Handle("GET /ws", s.auth(http.HandlerFunc(s.getWebsocket)))
	if s.states != nil {
		mux.Handle("GET /history/{identifier}/{slug}", s.auth(http.HandlerFunc(s.getHistory)))
		mux.Handle("GET /states/latest", s.auth(http.HandlerFunc(s.getLatestStates)))
	}
	return LoggingMiddleware(mux)
}

type deviceResponse struct {
	MAC         string   `json:"mac"`
	Model       string   `json:"model"`
	Name        string   `json:"name"`
	SoundMode   bool     `json:"supports_sound_mode"`
	ARC         bool     `json:"supports_arc"`
	ARCEnabled  bool     `json:"arc_enabled"`
	Resolution  string   `json:"video_input_resolution,omitempty"`
	AudioFormat string   `json:"audio_input_format,omitempty"`
	InputList   []string `json:"input_list"`
	SoundModes  []string `json:"sound_mode_list,omitempty"`
	CurrentMode string   `json:"sound_mode,omitempty"`
}

func (s *server) getDevice(w http.ResponseWriter, _ *http.Request) {
	info := s.avrs.DeviceInfo()
	caps := s.avrs.Capabilities()
	state := s.avrs.DeviceState()
	writeJSON(w, deviceResponse{
		MAC:         info.MAC,
		Model:       info.Model,
		Name:        info.Name,
		SoundMode:   caps.SoundMode,
		ARC:         caps.ARC,
		ARCEnabled:  state.ARCEnabled,
		Resolution:  state.VideoResolution,
		AudioFormat: state.AudioFormat,
		InputList:   state.InputList,
		SoundModes:  state.SoundModeList,
		CurrentMode: state.SoundMode,
	})
}

func (s *server) getZones(w http.ResponseWriter, _ *http.Request) {
	views := s.zoneViews()
	writeJSON(w, views)
}

func (s *server) getHistory(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	slug := r.PathValue("slug")
	from, err := parseTimeParam(r, "from")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid from timestamp"))
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid to timestamp"))
		return
	}
	states, err := s.states.GetStates(r.Context(), identifier, slug, from, to)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, states)
}

func (s *server) getLatestStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.states.GetLatestStates(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, states)
}

func parseTimeParam(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *server) zoneViews() map[int]entity.ZoneView {
	caps := s.avrs.Capabilities()
	state := s.avrs.DeviceState()
	views := map[int]entity.ZoneView{}
	for _, number := range s.avrs.Zones() {
		zone, ok := s.avrs.Zone(number)
		if !ok {
			continue
		}
		views[number] = entity.Project(zone, state, caps)
	}
	return views
}

type powerPayload struct {
	On bool `json:"on"`
}

type volumePayload struct {
	Volume float64 `json:"volume"`
}

type stepPayload struct {
	Direction string `json:"direction"` // "up" or "down"
}

type mutePayload struct {
	Muted bool `json:"muted"`
}

type sourcePayload struct {
	Source string `json:"source"`
}

type soundModePayload struct {
	SoundMode string `json:"sound_mode"`
}

type arcPayload struct {
	Enabled bool `json:"enabled"`
}

// zoneHandler resolves the {zone} path value before calling the handler.
func (s *server) zoneHandler(fn func(w http.ResponseWriter, r *http.Request, zone int)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zone, err := strconv.Atoi(r.PathValue("zone"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("invalid zone"))
			return
		}
		fn(w, r, zone)
	})
}

func (s *server) postZonePower(w http.ResponseWriter, r *http.Request, zone int) {
	req, err := unmarshalPayload[powerPayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	s.logger.Info("switching zone power", zap.Int("zone", zone), zap.Bool("on", req.On))
	if err := s.avrs.SetPower(zone, req.On); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postZoneVolume(w http.ResponseWriter, r *http.Request, zone int) {
	req, err := unmarshalPayload[volumePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.avrs.SetVolume(zone, req.Volume); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postZoneVolumeStep(w http.ResponseWriter, r *http.Request, zone int) {
	req, err := unmarshalPayload[stepPayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	direction := avr.VolumeUp
	if req.Direction == "down" {
		direction = avr.VolumeDown
	}
	if err := s.avrs.StepVolume(zone, direction); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postZoneMute(w http.ResponseWriter, r *http.Request, zone int) {
	req, err := unmarshalPayload[mutePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.avrs.SetMute(zone, req.Muted); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postZoneSource(w http.ResponseWriter, r *http.Request, zone int) {
	req, err := unmarshalPayload[sourcePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if req.Source == "" {
		handleError(w, errors.New("source cannot be empty"))
		return
	}
	if err := s.avrs.SelectSource(zone, req.Source); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postSoundMode(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[soundModePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if req.SoundMode == "" {
		handleError(w, errors.New("sound_mode cannot be empty"))
		return
	}
	s.logger.Info("switching sound mode", zap.String("sound_mode", req.SoundMode))
	if err := s.avrs.SelectSoundMode(req.SoundMode); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postARC(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[arcPayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.avrs.SetARC(req.Enabled); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *server) postRefresh(w http.ResponseWriter, _ *http.Request) {
	if err := s.avrs.Refresh(); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func handleError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}

func writeSuccess(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("success"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
