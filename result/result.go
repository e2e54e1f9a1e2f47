package result

import (
	"time"
)

// Status is the outcome variant shared by every probe result. Each result type
// documents which subset of statuses it can carry.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusTimeout   Status = "timeout"
	StatusError     Status = "error"
	StatusConnected Status = "connected"
	StatusFailed    Status = "failed"
)

// LinkStatus is the operational status of an interface
type LinkStatus string

const (
	LinkUp   LinkStatus = "up"
	LinkDown LinkStatus = "down"
)

// AddressFamily is the family of an interface address
type AddressFamily string

const (
	FamilyIPv4 AddressFamily = "IPv4"
	FamilyIPv6 AddressFamily = "IPv6"
)

// RecordType is a DNS record type queried by the DNS probe
type RecordType string

const (
	RecordA    RecordType = "A"
	RecordAAAA RecordType = "AAAA"
	RecordMX   RecordType = "MX"
)

type (
	// Address is one address assigned to an interface. Broadcast is only set
	// for IPv4.
	Address struct {
		Family    AddressFamily `json:"type"`
		Address   string        `json:"address"`
		Netmask   string        `json:"netmask"`
		Broadcast string        `json:"broadcast,omitempty"`
	}

	// InterfaceInfo is a point-in-time snapshot of a network interface
	InterfaceInfo struct {
		Name      string     `json:"name"`
		Addresses []Address  `json:"addresses"`
		Status    LinkStatus `json:"status"`
	}

	// Interfaces maps interface name to its snapshot
	Interfaces map[string]InterfaceInfo

	// IOCounters are cumulative I/O counters summed over all interfaces
	IOCounters struct {
		BytesSent   uint64 `json:"bytes_sent"`
		BytesRecv   uint64 `json:"bytes_recv"`
		PacketsSent uint64 `json:"packets_sent"`
		PacketsRecv uint64 `json:"packets_recv"`
		ErrorsIn    uint64 `json:"errin"`
		ErrorsOut   uint64 `json:"errout"`
		DropsIn     uint64 `json:"dropin"`
		DropsOut    uint64 `json:"dropout"`
	}

	// InterfacesResult wraps an interface snapshot or the reason it could not be taken
	InterfacesResult struct {
		Interfaces Interfaces  `json:"interfaces,omitempty"`
		Error      *ProbeError `json:"error,omitempty"`
	}

	// CountersResult wraps an IOCounters reading or the reason it could not be taken
	CountersResult struct {
		*IOCounters
		Error *ProbeError `json:"error,omitempty"`
	}
)

type (
	// PingAttempt is a single echo request. Status is one of success, timeout
	// or error; RTTMillis is only set on success.
	PingAttempt struct {
		Sequence  int         `json:"sequence"`
		RTTMillis *float64    `json:"time"`
		Status    Status      `json:"status"`
		Error     *ProbeError `json:"error,omitempty"`
	}

	// PingResult holds every attempt toward a host and the derived statistics
	PingResult struct {
		Host              string        `json:"host"`
		Attempts          []PingAttempt `json:"results"`
		PacketLossPercent float64       `json:"packet_loss"`
		AverageMillis     float64       `json:"average_time"`
		MinMillis         float64       `json:"min_time"`
		MaxMillis         float64       `json:"max_time"`
		JitterMillis      float64       `json:"jitter"`
		SuccessCount      int           `json:"successful_pings"`
		TotalCount        int           `json:"total_pings"`
	}
)

// Normalize computes the derived statistics from the attempts. Only successful
// attempts contribute to the latency figures, which stay 0 when none succeeded.
func (r *PingResult) Normalize() {
	r.TotalCount = len(r.Attempts)
	r.SuccessCount = 0
	var rtts []float64
	for _, attempt := range r.Attempts {
		if attempt.Status == StatusSuccess && attempt.RTTMillis != nil {
			rtts = append(rtts, *attempt.RTTMillis)
		}
	}
	r.SuccessCount = len(rtts)

	r.PacketLossPercent = lossPercent(r.TotalCount-r.SuccessCount, r.TotalCount)

	r.AverageMillis, r.MinMillis, r.MaxMillis, r.JitterMillis = 0, 0, 0, 0
	if len(rtts) == 0 {
		return
	}
	var total float64
	r.MinMillis, r.MaxMillis = rtts[0], rtts[0]
	for _, rtt := range rtts {
		total += rtt
		if rtt < r.MinMillis {
			r.MinMillis = rtt
		}
		if rtt > r.MaxMillis {
			r.MaxMillis = rtt
		}
	}
	r.AverageMillis = Round2(total / float64(len(rtts)))
	r.JitterMillis = Round2(computeJitter(rtts))
}

// lossPercent is 0 only when nothing was lost and 100 only when everything
// was. Rounding is skipped where it would reach either bound.
func lossPercent(lost, total int) float64 {
	if total == 0 || lost == 0 {
		return 0
	}
	if lost == total {
		return 100
	}
	exact := 100 * float64(lost) / float64(total)
	if rounded := Round2(exact); rounded > 0 && rounded < 100 {
		return rounded
	}
	return exact
}

// computeJitter is the mean absolute difference between consecutive round trips
func computeJitter(rtts []float64) float64 {
	if len(rtts) < 2 {
		return 0
	}
	var cumulativeDifference float64
	for i := 1; i < len(rtts); i++ {
		diff := rtts[i] - rtts[i-1]
		if diff < 0 {
			diff = -diff
		}
		cumulativeDifference += diff
	}
	return cumulativeDifference / float64(len(rtts)-1)
}

type (
	// Target is a named (host, port) entry of the connectivity roster
	Target struct {
		Name string `json:"name" yaml:"name"`
		Host string `json:"host" yaml:"host"`
		Port int    `json:"port" yaml:"port"`
	}

	// ConnectivityResult is the outcome of one TCP connect attempt. Status is
	// one of connected, failed or error; ResponseTimeMillis is only set when
	// connected.
	ConnectivityResult struct {
		Name               string      `json:"name"`
		Host               string      `json:"host"`
		Port               int         `json:"port"`
		Status             Status      `json:"status"`
		ResponseTimeMillis *float64    `json:"response_time"`
		Error              *ProbeError `json:"error,omitempty"`
	}
)

type (
	// DnsRecords is either the records found for one record type or the
	// reason the query failed.
	DnsRecords struct {
		Records []string    `json:"records,omitempty"`
		Error   *ProbeError `json:"error,omitempty"`
	}

	// DnsResult always carries one entry per queried record type
	DnsResult struct {
		Domain  string                    `json:"domain"`
		Records map[RecordType]DnsRecords `json:"records"`
	}
)

// TracerouteResult holds the hop lines printed by the path tracer. Status is
// success or error; hops collected before a failure are kept.
type TracerouteResult struct {
	Host   string      `json:"host"`
	Hops   []string    `json:"hops"`
	Status Status      `json:"status"`
	Error  *ProbeError `json:"error,omitempty"`
}

type (
	// ThroughputServer describes the remote server a throughput test ran against
	ThroughputServer struct {
		Name       string  `json:"name"`
		Country    string  `json:"country"`
		Sponsor    string  `json:"sponsor"`
		Host       string  `json:"host"`
		DistanceKm float64 `json:"distance"`
	}

	// ThroughputMeasurement holds the figures of a completed throughput test
	ThroughputMeasurement struct {
		DownloadMbps float64          `json:"download_speed"`
		UploadMbps   float64          `json:"upload_speed"`
		PingMillis   float64          `json:"ping"`
		Server       ThroughputServer `json:"server"`
	}

	// ThroughputResult is either a complete measurement or an error, never a
	// partially filled measurement.
	ThroughputResult struct {
		Status Status `json:"status"`
		*ThroughputMeasurement
		Error     *ProbeError `json:"error,omitempty"`
		Timestamp time.Time   `json:"timestamp"`
	}
)

// NewThroughputSuccess builds the success variant
func NewThroughputSuccess(m ThroughputMeasurement, ts time.Time) ThroughputResult {
	return ThroughputResult{Status: StatusSuccess, ThroughputMeasurement: &m, Timestamp: ts}
}

// NewThroughputError builds the error variant
func NewThroughputError(err *ProbeError, ts time.Time) ThroughputResult {
	return ThroughputResult{Status: StatusError, Error: err, Timestamp: ts}
}

// BandwidthSession holds the samples of one monitoring session. Status is
// success when every sample was taken, otherwise error with the samples taken
// before the failure kept in order.
type BandwidthSession struct {
	Samples []BandwidthSample `json:"samples"`
	Status  Status            `json:"status"`
	Error   *ProbeError       `json:"error,omitempty"`
}

// BandwidthSample is one rate estimate of a monitoring session. Rates are
// averages over the whole session up to Timestamp.
type BandwidthSample struct {
	Sequence         int       `json:"sequence"`
	Timestamp        time.Time `json:"timestamp"`
	ElapsedSeconds   int       `json:"elapsed_seconds"`
	DownloadRateMbps float64   `json:"download_rate_mbps"`
	UploadRateMbps   float64   `json:"upload_rate_mbps"`
}

type (
	// Source describes the probing host: the local end of its default route
	// and its public identity
	Source struct {
		LocalIP    string      `json:"local_ip,omitempty"`
		Interface  string      `json:"interface,omitempty"`
		PublicIP   string      `json:"public_ip,omitempty"`
		ReverseDns []string    `json:"reverse_dns,omitempty"`
		Error      *ProbeError `json:"error,omitempty"`
	}

	// FullDiagnosis is the merged output of every probe. Each field is
	// populated independently and carries its own error content.
	FullDiagnosis struct {
		ID             string               `json:"id"`
		Timestamp      time.Time            `json:"timestamp"`
		DurationMillis float64              `json:"duration_ms"`
		Interfaces     InterfacesResult     `json:"interfaces"`
		Stats          CountersResult       `json:"stats"`
		Pings          []PingResult         `json:"pings"`
		DNS            DnsResult            `json:"dns_lookup"`
		Connectivity   []ConnectivityResult `json:"connectivity"`
		Throughput     ThroughputResult     `json:"speed_test"`
		Source         *Source              `json:"source,omitempty"`
	}
)
