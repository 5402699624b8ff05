package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		activationCodesIssued,
		activationValidations,
		activationCodesPurged,
	)
}

var (
	activationCodesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_codes_issued_total",
			Help: "Activation code requests, labeled by outcome.",
		},
		[]string{"outcome"}, // 'minted', 'refreshed', 'rejected', 'error'
	)

	activationValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_validations_total",
			Help: "Activation code validations, labeled by outcome.",
		},
		[]string{"outcome"}, // 'activated', 'invalid', 'expired', 'locked', 'error'
	)

	activationCodesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activation_codes_purged_total",
			Help: "Expired activation codes removed by the purge sweep.",
		},
	)
)

func IncActivationCodeIssued(outcome string) {
	activationCodesIssued.WithLabelValues(norm(outcome)).Inc()
}

func IncActivationValidation(outcome string) {
	activationValidations.WithLabelValues(norm(outcome)).Inc()
}

func AddActivationCodesPurged(n int64) {
	if n > 0 {
		activationCodesPurged.Add(float64(n))
	}
}
