package model

import "time"

// Alert is a single detected (or simulated) threat event.
type Alert struct {
	ID          string    `json:"id,omitempty"`
	Label       string    `json:"label"`
	Severity    string    `json:"severity"`
	SourceIP    string    `json:"source_ip"`
	DestIP      string    `json:"dest_ip,omitempty"`
	Protocol    string    `json:"protocol,omitempty"`
	Service     string    `json:"service,omitempty"`
	Confidence  float64   `json:"confidence"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	PacketBytes int       `json:"packet_bytes,omitempty"`
}

// Severity levels, ordered by urgency.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// SeverityForLabel maps an attack label to an alert severity.
// DoS attacks are the loudest and most disruptive, probes the least.
func SeverityForLabel(label string) string {
	switch label {
	case "neptune", "smurf", "back", "teardrop", "pod", "land":
		return SeverityHigh
	case "portsweep", "ipsweep", "nmap", "satan":
		return SeverityMedium
	case "guess_passwd", "buffer_overflow", "rootkit", "perl", "loadmodule":
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
