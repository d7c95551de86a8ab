package config

import (
	"context"
	"testing"
	"time"

	"badgecode-go/bus"
	"badgecode-go/errcode"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{
			"badge": {"name": "Ada", "disable_sync": true},
			"heartbeat": {"interval": 2}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService(logx.Discard())
	svc.Start(WithDevice(context.Background(), "pico"), conn)

	sub := conn.Subscribe(bus.T(configPrefix, "#"))
	got := map[string]any{}
	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < 2 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if len(m.Topic) != 2 || m.Topic[0] != configPrefix || !m.Retained {
				t.Fatalf("unexpected message: %#v", m)
			}
			got[m.Topic[1]] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 retained messages, got %v", got)
	}

	c, ok := got["badge"].(types.BadgeConfig)
	if !ok {
		t.Fatalf("badge payload %T", got["badge"])
	}
	if c.Name != "Ada" || c.IdleRedrawMs != 60_000 || c.JoinAttempts != 30 {
		t.Fatalf("badge config not defaulted: %+v", c)
	}

	hb, ok := got["heartbeat"].(map[string]any)
	if !ok || hb["interval"] != float64(2) {
		t.Fatalf("heartbeat payload = %#v", got["heartbeat"])
	}
}

func TestResolveEmbedded(t *testing.T) {
	c, err := Resolve(WithDevice(context.Background(), "sim"))
	if err != nil {
		t.Fatal(err)
	}
	if !c.DisableSync || c.AlarmMs != 60_000 || c.SyncMs != 3_600_000 {
		t.Fatalf("sim config = %+v", c)
	}
	if _, err := Resolve(WithDevice(context.Background(), "badger2040w")); err != nil {
		t.Fatalf("device config: %v", err)
	}
	if _, err := Resolve(context.Background()); err == nil {
		t.Fatal("missing device should fail")
	}
	if _, err := Resolve(WithDevice(context.Background(), "toaster")); err == nil {
		t.Fatal("unknown device should fail")
	}
}

func TestLoadValidation(t *testing.T) {
	if _, err := Load([]byte(`{"name":"x"}`)); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("sync without ssid err = %v", err)
	}
	if _, err := Load([]byte(`{"disable_sync":true,"alarm_ms":1000}`)); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("short alarm err = %v", err)
	}
	if _, err := Load([]byte(`[1,2]`)); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("bad json err = %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML([]byte("name: Pi Badge\nwifi_ssid: home\nwifi_password: secret\nsync_ms: 600000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Pi Badge" || c.WifiSSID != "home" || c.SyncEvery() != 10*time.Minute || c.Debounce() != 50*time.Millisecond {
		t.Fatalf("yaml config = %+v", c)
	}
	if _, err := LoadYAML([]byte("name: [")); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("bad yaml err = %v", err)
	}
}
