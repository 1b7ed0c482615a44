package ads7953

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "ads7953"
)

var (
	// Total number of conversions read, per channel
	conversionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conversions_total",
		Help:      "Total number of conversion results read",
	}, []string{"device", "channel"})
	// Result frames whose channel address did not match the expected channel
	addressMismatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "address_mismatch_total",
		Help:      "Total number of results tagged with an unexpected channel address",
	}, []string{"device"})
	// Last moving average, per channel
	channelAverage = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "channel_average",
		Help:      "Moving average of the raw readings of a channel",
	}, []string{"device", "channel"})
	readyTimeoutsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ready_timeouts_total",
		Help:      "Total number of times the busy line did not report a result in time",
	}, []string{"device"})
	windowsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "windows_completed_total",
		Help:      "Total number of sampling windows that ran to completion",
	}, []string{"device"})
)

func init() {
	prometheus.MustRegister(
		conversionsTotal,
		addressMismatchTotal,
		channelAverage,
		readyTimeoutsTotal,
		windowsCompletedTotal,
	)
}
