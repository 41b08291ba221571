package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes used as the "outcome" label value.
const (
	OutcomeOK              = "ok"
	OutcomeRejected        = "rejected"
	OutcomeAttachmentError = "attachment_error"
	OutcomeRemoteError     = "remote_error"
	OutcomeEmpty           = "empty"
)

var (
	DispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatpilot_dispatches_total",
		Help: "Dispatches by outcome.",
	}, []string{"outcome"})

	EmptyRepliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatpilot_empty_replies_total",
		Help: "Error-free replies carrying neither text nor image.",
	})

	TranscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatpilot_transcriptions_total",
		Help: "Voice transcription sessions by outcome.",
	}, []string{"outcome"})
)
