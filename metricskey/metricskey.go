package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfSignatureParse is perf metric
	PerfSignatureParse = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_sig_parse",
		Help:         "perf_sig_parse provides the sample metrics of signature parsing",
		RequiredTags: []string{"engine", "stage"},
	}

	// PerfDigestInit is perf metric
	PerfDigestInit = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_digest_init",
		Help:         "perf_digest_init provides the sample metrics of digest context creation",
		RequiredTags: []string{"engine", "algorithm"},
	}
)

// Stats
var (
	// StatsSignatureRejected is counter of rejected signatures
	StatsSignatureRejected = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "sig_rejected",
		Help:         "sig_rejected provides the counter of rejected signatures",
		RequiredTags: []string{"reason"},
	}

	// StatsGateInit is counter of native library initializations
	StatsGateInit = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "gate_init",
		Help:         "gate_init provides the counter of native library initializations",
		RequiredTags: []string{"engine"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfSignatureParse,
	&PerfDigestInit,
	&StatsSignatureRejected,
	&StatsGateInit,
}
