package monitor

import (
	"context"
	"fmt"
	"time"

	"netguard-ids/internal/alert"
	"netguard-ids/internal/capture"
	"netguard-ids/internal/detector"
	"netguard-ids/internal/features"
	"netguard-ids/internal/model"

	"github.com/sirupsen/logrus"
)

// LiveSource classifies captured packets with the trained model and emits
// alerts for confident attack predictions, rate-limited per source IP.
type LiveSource struct {
	reader     *capture.Reader
	det        *detector.Detector
	limiter    *detector.RateLimiter
	bufferSize int
	metrics    *alert.Metrics
	logger     *logrus.Logger
}

// NewLiveSource wires a capture reader to the inference path.
func NewLiveSource(reader *capture.Reader, det *detector.Detector, limiter *detector.RateLimiter, bufferSize int, metrics *alert.Metrics, logger *logrus.Logger) *LiveSource {
	return &LiveSource{
		reader:     reader,
		det:        det,
		limiter:    limiter,
		bufferSize: bufferSize,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run implements Source. Returns when the capture is exhausted or ctx is
// canceled.
func (ls *LiveSource) Run(ctx context.Context, e *Engine) error {
	stream, err := ls.reader.Stream(ctx, ls.bufferSize)
	if err != nil {
		return fmt.Errorf("failed to start packet stream: %v", err)
	}

	for conn := range stream {
		e.RecordPackets(1)

		start := time.Now()
		prediction, err := ls.det.PredictOne(conn.Vector())
		if ls.metrics != nil {
			ls.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			ls.logger.Errorf("Failed to classify packet: %v", err)
			continue
		}

		if !ls.det.ShouldAlert(prediction) {
			continue
		}

		if !ls.limiter.Allow(conn.SrcIP) {
			ls.logger.Debugf("Rate limiting alerts from %s", conn.SrcIP)
			if ls.metrics != nil {
				ls.metrics.AlertsRateLimited.WithLabelValues(conn.SrcIP).Inc()
			}
			continue
		}

		e.EmitThreat(liveAlert(conn, prediction))
	}

	if n := ls.reader.Dropped(); n > 0 {
		ls.logger.Warnf("Capture backpressure dropped %d connection records", n)
	}
	return ctx.Err()
}

func liveAlert(conn *features.Connection, p model.Prediction) model.Alert {
	return model.Alert{
		Label:       p.Label,
		Severity:    model.SeverityForLabel(p.Label),
		SourceIP:    conn.SrcIP,
		DestIP:      conn.DstIP,
		Protocol:    conn.Protocol,
		Service:     conn.Service,
		Confidence:  p.Confidence,
		Message:     fmt.Sprintf("%s attack detected from %s (confidence: %.3f)", p.Label, conn.SrcIP, p.Confidence),
		Timestamp:   time.Now(),
		PacketBytes: conn.SrcBytes,
	}
}
