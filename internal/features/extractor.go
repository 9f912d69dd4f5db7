package features

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Extractor derives Connection records from captured packets.
type Extractor struct {
	serviceMap map[uint16]string
}

// NewExtractor creates an extractor with the standard port-to-service map.
func NewExtractor() *Extractor {
	return &Extractor{
		serviceMap: map[uint16]string{
			20:   "ftp_data",
			21:   "ftp",
			22:   "ssh",
			23:   "telnet",
			25:   "smtp",
			53:   "domain",
			80:   "http",
			110:  "pop_3",
			135:  "loc-srv",
			139:  "netbios-ssn",
			143:  "imap4",
			161:  "snmp",
			443:  "https",
			445:  "microsoft-ds",
			993:  "imaps",
			995:  "pop_3s",
			1433: "ms-sql-s",
			3389: "ms-wbt-server",
		},
	}
}

// Extract returns the connection record for a packet, or nil for packets
// without an IPv4 layer.
func (e *Extractor) Extract(packet gopacket.Packet) *Connection {
	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return nil
	}
	ip := ipLayer.(*layers.IPv4)

	conn := &Connection{
		SrcIP:    ip.SrcIP.String(),
		DstIP:    ip.DstIP.String(),
		Protocol: "other",
		Service:  "other",
		Flag:     "OTH",
		SrcBytes: len(packet.Data()),
		Land:     ip.SrcIP.Equal(ip.DstIP),
	}

	if tcpLayer := packet.Layer(layers.LayerTypeTCP); tcpLayer != nil {
		tcp := tcpLayer.(*layers.TCP)
		conn.Protocol = "tcp"
		conn.Service = e.serviceForPort(uint16(tcp.DstPort))
		conn.Flag = tcpFlag(tcp)
		conn.Urgent = tcp.URG
	} else if udpLayer := packet.Layer(layers.LayerTypeUDP); udpLayer != nil {
		udp := udpLayer.(*layers.UDP)
		conn.Protocol = "udp"
		conn.Service = e.serviceForPort(uint16(udp.DstPort))
		conn.Flag = "SF"
	} else if packet.Layer(layers.LayerTypeICMPv4) != nil {
		conn.Protocol = "icmp"
		conn.Flag = "SF"
	}

	return conn
}

func (e *Extractor) serviceForPort(port uint16) string {
	if service, ok := e.serviceMap[port]; ok {
		return service
	}
	return "other"
}

// tcpFlag buckets TCP flags into the KDD connection-state codes: S0 for a
// bare SYN, S1 for SYN+ACK, RSTR for a reset mid-conversation, REJ for a
// bare reset, SF otherwise. Every emitted value has an entry in flagCodes.
func tcpFlag(tcp *layers.TCP) string {
	switch {
	case tcp.SYN && !tcp.ACK:
		return "S0"
	case tcp.SYN && tcp.ACK:
		return "S1"
	case tcp.RST && tcp.ACK:
		return "RSTR"
	case tcp.RST:
		return "REJ"
	default:
		return "SF"
	}
}
