// Package capture reads packets from live interfaces or pcap files and
// streams connection records for classification.
package capture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"netguard-ids/internal/features"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

// Reader reads packets from PCAP files or live interfaces.
type Reader struct {
	handle    *pcap.Handle
	extractor *features.Extractor
	isLive    bool
	dropped   atomic.Int64

	// The gopacket packet channel is created once and shared across Stream
	// calls: Packets() spawns a reader goroutine per call, and a second one
	// on the same handle would fight over it after a stop/start cycle.
	mu      sync.Mutex
	packets chan gopacket.Packet
}

// NewFileReader creates a reader for PCAP files.
func NewFileReader(filename string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filename)
	if err != nil {
		return nil, err
	}

	return &Reader{
		handle:    handle,
		extractor: features.NewExtractor(),
		isLive:    false,
	}, nil
}

// NewLiveReader creates a reader for live packet capture.
func NewLiveReader(iface string, promisc bool) (*Reader, error) {
	handle, err := pcap.OpenLive(iface, 65535, promisc, pcap.BlockForever)
	if err != nil {
		return nil, err
	}

	return &Reader{
		handle:    handle,
		extractor: features.NewExtractor(),
		isLive:    true,
	}, nil
}

// DefaultInterface returns the first usable non-loopback capture device.
func DefaultInterface() (string, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return "", err
	}
	for _, dev := range devices {
		if dev.Name == "lo" || len(dev.Addresses) == 0 {
			continue
		}
		return dev.Name, nil
	}
	return "", errors.New("no usable capture interface found")
}

// Stream returns a channel of connection records. The channel is bounded;
// records are dropped rather than blocking capture when the consumer falls
// behind. The returned channel closes when ctx is done or the source is
// exhausted; calling Stream again resumes from the same packet source.
func (r *Reader) Stream(ctx context.Context, bufferSize int) (<-chan *features.Connection, error) {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	r.mu.Lock()
	if r.packets == nil {
		if r.handle == nil {
			r.mu.Unlock()
			return nil, errors.New("reader not initialized")
		}
		r.packets = gopacket.NewPacketSource(r.handle, r.handle.LinkType()).Packets()
	}
	packets := r.packets
	r.mu.Unlock()

	out := make(chan *features.Connection, bufferSize)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case packet, ok := <-packets:
				if !ok {
					return
				}
				conn := r.extractor.Extract(packet)
				if conn == nil {
					continue
				}
				select {
				case out <- conn:
				default:
					r.dropped.Add(1)
				}
			}
		}
	}()

	return out, nil
}

// Dropped returns how many records were discarded due to backpressure.
func (r *Reader) Dropped() int64 {
	return r.dropped.Load()
}

// Close releases the capture handle.
func (r *Reader) Close() {
	if r.handle != nil {
		r.handle.Close()
	}
}
