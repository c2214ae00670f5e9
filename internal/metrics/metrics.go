package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "termchat_ws_connections",
		Help: "Current number of open websocket connections",
	})
	AuthenticatedConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "termchat_authenticated_connections",
		Help: "Current number of connections bound to a session",
	})
	CommunityMembers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "termchat_community_members",
		Help: "Current number of connections joined to a community",
	}, []string{"community"})
	MessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "termchat_messages_total",
		Help: "Total number of chat messages appended to history",
	})
	DroppedEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "termchat_dropped_events_total",
		Help: "Outbound events dropped because a client buffer was full",
	})
	InboundEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "termchat_inbound_events_total",
		Help: "Inbound client events by type",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		AuthenticatedConnections,
		CommunityMembers,
		MessagesTotal,
		DroppedEventsTotal,
		InboundEventsTotal,
	)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
