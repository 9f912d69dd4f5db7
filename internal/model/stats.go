package model

// Stats is the dashboard snapshot returned by /api/stats.
// Counters are always non-negative; Uptime is whole seconds since the
// monitor started and 0 while stopped.
type Stats struct {
	IsMonitoring    bool  `json:"is_monitoring"`
	PacketsAnalyzed int64 `json:"packets_analyzed"`
	ThreatsDetected int64 `json:"threats_detected"`
	Uptime          int64 `json:"uptime"`
	Sensitivity     int   `json:"sensitivity"`
}

// Prediction is the outcome of classifying one connection record.
type Prediction struct {
	Label      string  `json:"label"`
	IsAttack   bool    `json:"is_attack"`
	Confidence float64 `json:"confidence"`
}
