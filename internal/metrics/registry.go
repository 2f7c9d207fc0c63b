package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every collector the service exports.
const namespace = "agentbot"

func mustRegisterOnce(once *sync.Once, cs ...prometheus.Collector) {
	once.Do(func() {
		prometheus.MustRegister(cs...)
	})
}
