package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"badgecode-go/bus"
	"badgecode-go/types"
	"badgecode-go/x/logx"
)

var (
	topicConfigBadge = bus.T("config", "badge")
	topicStateAll    = bus.T("state", "#")
)

const defaultInterval = 30 * time.Second

// Status is the last view assembled from retained state topics.
type Status struct {
	Uptime  time.Duration
	Power   types.PowerState
	HasPow  bool
	Sync    types.SyncResult
	HasSync bool
	Clock   types.ClockValue
}

type Service struct {
	log   *slog.Logger
	start time.Time
	// Beat receives every status line; nil means log only.
	Beat func(Status)
}

func New(log *slog.Logger) *Service {
	return &Service{log: logx.Or(log), start: time.Now()}
}

func (s *Service) emit(st Status) {
	st.Uptime = time.Since(s.start).Truncate(time.Second)
	args := []any{"uptime", st.Uptime.String()}
	if st.HasPow {
		args = append(args, "wake", st.Power.Reason.String(), "resident", st.Power.Resident)
	}
	if st.HasSync {
		args = append(args,
			"sync_age", time.Since(time.UnixMilli(st.Sync.TS)).Truncate(time.Second).String(),
			"sync_ok", st.Sync.TimeOK && st.Sync.WeatherOK,
		)
	}
	args = append(args, "clock_trusted", st.Clock.Trusted)
	s.log.Info("heartbeat", args...)
	if s.Beat != nil {
		s.Beat(st)
	}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigBadge)
	defer conn.Unsubscribe(cfgSub)
	stSub := conn.Subscribe(topicStateAll)
	defer conn.Unsubscribe(stSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	var st Status
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("heartbeat: stopping")
			return
		case <-tick.C:
			s.emit(st)
		case msg := <-stSub.Channel():
			switch p := msg.Payload.(type) {
			case types.PowerState:
				st.Power, st.HasPow = p, true
			case types.SyncResult:
				st.Sync, st.HasSync = p, true
			case types.ClockValue:
				st.Clock = p
			}
		case msg := <-cfgSub.Channel():
			if c, ok := msg.Payload.(types.BadgeConfig); ok {
				if iv := c.HeartbeatEvery(); iv > 0 {
					tick.Reset(iv)
					s.log.Debug("heartbeat: interval set", "every", iv.String())
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
