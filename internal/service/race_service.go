package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/racecast/internal/alert"
	"github.com/yourusername/racecast/internal/logger"
	"github.com/yourusername/racecast/internal/metrics"
	"github.com/yourusername/racecast/internal/models"
	"github.com/yourusername/racecast/internal/simulation"
)

const alertTimeout = 30 * time.Second

// RaceEngine is the lifecycle state machine driven by the service
type RaceEngine interface {
	Tick(ctx context.Context, now time.Time) (*models.RaceResponse, error)
	Status() simulation.Status
}

// Broadcaster delivers a serialized payload to every connected client
type Broadcaster interface {
	Broadcast(payload []byte) (delivered, dropped int)
}

// RaceService runs one engine tick per call and broadcasts the resulting response
type RaceService struct {
	engine      RaceEngine
	broadcaster Broadcaster
	notifier    alert.Notifier
	log         *logrus.Logger
	raceLog     *logger.RaceLogger
	audit       *logger.AuditLogger
	payloadDump bool
	now         func() time.Time
}

// RaceServiceOptions tunes optional behaviour of RaceService
type RaceServiceOptions struct {
	PayloadDump bool
	Clock       func() time.Time
}

// NewRaceService wires the engine to the broadcaster
func NewRaceService(engine RaceEngine, broadcaster Broadcaster, notifier alert.Notifier, log *logrus.Logger, opts RaceServiceOptions) *RaceService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if notifier == nil {
		notifier = alert.NopNotifier{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &RaceService{
		engine:      engine,
		broadcaster: broadcaster,
		notifier:    notifier,
		log:         log,
		raceLog:     logger.NewRaceLogger(log),
		audit:       logger.NewAuditLogger(log),
		payloadDump: opts.PayloadDump,
		now:         opts.Clock,
	}
}

// RunTick advances the engine once and broadcasts the response.
// A lost race record is still broadcast; the write error is returned after operators are alerted.
func (s *RaceService) RunTick(ctx context.Context) error {
	start := time.Now()

	resp, tickErr := s.engine.Tick(ctx, s.now())
	if resp != nil {
		if err := s.publish(resp); err != nil {
			metrics.RecordTickError()
			return err
		}

		duration := time.Since(start)
		metrics.RecordTick(string(resp.Type), duration.Seconds())
		s.raceLog.LogTick(string(resp.Type), resp.IsRunning, float64(duration.Microseconds())/1000)
	}

	if tickErr != nil {
		metrics.RecordTickError()
		if errors.Is(tickErr, models.ErrHistoryWrite) {
			s.reportLostRecord(tickErr)
		}
		return tickErr
	}
	return nil
}

func (s *RaceService) publish(resp *models.RaceResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode race response: %w", err)
	}

	if s.payloadDump {
		s.log.WithField("payload", string(payload)).Debug("Broadcast payload")
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(payload)
	}
	return nil
}

func (s *RaceService) reportLostRecord(err error) {
	// the engine has already moved on to the next index
	raceIndex := s.engine.Status().RaceIndex - 1
	s.audit.LogRaceRecordLost(raceIndex, err.Error())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		title := fmt.Sprintf("Race %d record lost", raceIndex)
		if notifyErr := s.notifier.Notify(ctx, title, err.Error()); notifyErr != nil {
			s.log.WithError(notifyErr).Error("Failed to deliver lost record alert")
		}
	}()
}
