package config

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"gopkg.in/yaml.v3"

	"badgecode-go/bus"
	"badgecode-go/errcode"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	keyBadge     = "badge"
)

type ctxKey struct{}

// WithDevice returns a context carrying the device ID used to pick the
// embedded configuration.
func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, ctxKey{}, device)
}

// DeviceFrom extracts the device ID set by WithDevice.
func DeviceFrom(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Load decodes a JSON badge config, applies defaults and validates it.
func Load(raw []byte) (types.BadgeConfig, error) {
	var c types.BadgeConfig
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, errcode.Wrap(errcode.InvalidConfig, "config.load", err)
	}
	return finish(c)
}

// LoadYAML is Load for the on-disk YAML form used by the Linux build.
func LoadYAML(raw []byte) (types.BadgeConfig, error) {
	var c types.BadgeConfig
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, errcode.Wrap(errcode.InvalidConfig, "config.yaml", err)
	}
	return finish(c)
}

func finish(c types.BadgeConfig) (types.BadgeConfig, error) {
	c.Defaults()
	if err := c.Validate(); err != nil {
		return c, errcode.Wrap(errcode.InvalidConfig, "config.validate", err)
	}
	return c, nil
}

// Resolve returns the badge section of the embedded config for the device in
// ctx.
func Resolve(ctx context.Context) (types.BadgeConfig, error) {
	doc, err := document(ctx)
	if err != nil {
		return types.BadgeConfig{}, err
	}
	raw, ok := doc[keyBadge]
	if !ok {
		return types.BadgeConfig{}, errcode.New(errcode.InvalidConfig, "config.resolve", "no badge section")
	}
	return Load(raw)
}

func document(ctx context.Context) (map[string]json.RawMessage, error) {
	device := DeviceFrom(ctx)
	if device == "" {
		return nil, errors.New("missing device ID in context")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("no embedded config for device: " + device)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "config.document", errors.New("embedded config is not a JSON object"))
	}
	return doc, nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	log  *slog.Logger
}

func NewConfigService(log *slog.Logger) *ConfigService {
	return &ConfigService{Name: serviceName, log: logx.Or(log)}
}

// publishConfig publishes each top-level key as a retained config/<key>
// message. The badge section is decoded into types.BadgeConfig; other
// sections are passed through as generic JSON values.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	doc, err := document(ctx)
	if err != nil {
		return err
	}
	for k, raw := range doc {
		var payload any
		if k == keyBadge {
			c, err := Load(raw)
			if err != nil {
				s.log.Warn("config: badge section rejected", "err", err)
				continue
			}
			payload = c
		} else if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), payload, true))
	}
	return nil
}

// Publish overrides the retained badge config, e.g. from a file on disk.
func (s *ConfigService) Publish(conn *bus.Connection, c types.BadgeConfig) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, keyBadge), c, true))
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			s.log.Warn("config: publish failed", "err", err)
		}
	}()
}
