// Package metrics exposes progression counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests can build as many as they like.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	reflections *prometheus.CounterVec
	xpAwarded   prometheus.Counter
	rituals     *prometheus.CounterVec
	chains      prometheus.Counter
	chainUsers  prometheus.Counter
	vault       prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		reflections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultfire_reflections_total",
			Help: "Reflections processed, by whether they were backdated.",
		}, []string{"backdated"}),
		xpAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultfire_reflection_xp_total",
			Help: "XP awarded by reflections.",
		}),
		rituals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultfire_rituals_unlocked_total",
			Help: "Named rituals unlocked.",
		}, []string{"ritual"}),
		chains: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultfire_chain_rituals_total",
			Help: "Chain rituals awarded.",
		}),
		chainUsers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultfire_chain_participants_total",
			Help: "Participants across all chain rituals.",
		}),
		vault: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaultfire_vault_reveals_total",
			Help: "Vault reveals.",
		}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		r.reflections, r.xpAwarded, r.rituals, r.chains, r.chainUsers, r.vault,
	)
	return r
}

func (r *Recorder) ReflectionProcessed(xpGained int, backdated bool) {
	if r == nil {
		return
	}
	r.reflections.WithLabelValues(strconv.FormatBool(backdated)).Inc()
	r.xpAwarded.Add(float64(xpGained))
}

func (r *Recorder) RitualUnlocked(ritual string) {
	if r == nil {
		return
	}
	r.rituals.WithLabelValues(ritual).Inc()
}

func (r *Recorder) ChainRitualAwarded(participants int) {
	if r == nil {
		return
	}
	r.chains.Inc()
	r.chainUsers.Add(float64(participants))
}

func (r *Recorder) VaultRevealed() {
	if r == nil {
		return
	}
	r.vault.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}
