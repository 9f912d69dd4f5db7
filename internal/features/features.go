// Package features turns raw packets into the 41-entry connection feature
// vectors the classifier was trained on (KDD Cup 1999 layout).
package features

// FeatureOrder is the exact column order used in training. The extractor
// and the dataset loader must agree on it.
var FeatureOrder = []string{
	"duration", "protocol_type", "service", "flag", "src_bytes",
	"dst_bytes", "land", "wrong_fragment", "urgent", "hot",
	"num_failed_logins", "logged_in", "num_compromised",
	"root_shell", "su_attempted", "num_root", "num_file_creations",
	"num_shells", "num_access_files", "num_outbound_cmds",
	"is_host_login", "is_guest_login", "count", "srv_count",
	"serror_rate", "srv_serror_rate", "rerror_rate",
	"srv_rerror_rate", "same_srv_rate", "diff_srv_rate",
	"srv_diff_host_rate", "dst_host_count", "dst_host_srv_count",
	"dst_host_same_srv_rate", "dst_host_diff_srv_rate",
	"dst_host_same_src_port_rate", "dst_host_srv_diff_host_rate",
	"dst_host_serror_rate", "dst_host_srv_serror_rate",
	"dst_host_rerror_rate", "dst_host_srv_rerror_rate",
}

// NumFeatures is the model input width.
var NumFeatures = len(FeatureOrder)

// Categorical encodings. These must match the values produced by the
// offline preprocessing step.
var (
	protocolCodes = map[string]float64{"tcp": 0, "udp": 1, "icmp": 2, "other": 3}
	serviceCodes  = map[string]float64{"other": 0, "http": 1, "https": 2, "ftp": 3, "ssh": 4}
	flagCodes     = map[string]float64{"SF": 0, "S0": 1, "REJ": 2, "RSTR": 3, "OTH": 4, "S1": 5}
)

// EncodeProtocol maps a protocol name to its numeric code.
func EncodeProtocol(protocol string) float64 {
	if code, ok := protocolCodes[protocol]; ok {
		return code
	}
	return protocolCodes["other"]
}

// EncodeService maps a service name to its numeric code.
func EncodeService(service string) float64 {
	if code, ok := serviceCodes[service]; ok {
		return code
	}
	return serviceCodes["other"]
}

// EncodeFlag maps a connection flag to its numeric code.
func EncodeFlag(flag string) float64 {
	if code, ok := flagCodes[flag]; ok {
		return code
	}
	return flagCodes["OTH"]
}

// Connection holds the fields extracted from one packet before encoding.
type Connection struct {
	SrcIP    string
	DstIP    string
	Protocol string
	Service  string
	Flag     string
	SrcBytes int
	Land     bool
	Urgent   bool
}

// Vector encodes the connection as a model input. Traffic statistics that
// need connection tracking default to single-connection values, matching
// the training-time defaults.
func (c *Connection) Vector() []float64 {
	v := make([]float64, NumFeatures)

	// duration stays 0: per-packet extraction has no connection lifetime
	v[1] = EncodeProtocol(c.Protocol)
	v[2] = EncodeService(c.Service)
	v[3] = EncodeFlag(c.Flag)
	v[4] = float64(c.SrcBytes)
	if c.Land {
		v[6] = 1
	}
	if c.Urgent {
		v[8] = 1
	}

	// count, srv_count, dst_host_count, dst_host_srv_count
	v[22] = 1
	v[23] = 1
	v[31] = 1
	v[32] = 1

	// same_srv_rate, dst_host_same_srv_rate
	v[28] = 1.0
	v[33] = 1.0

	return v
}
