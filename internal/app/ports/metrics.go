package ports

import (
	"nearbyradar/internal/domain/estate"
	"nearbyradar/internal/domain/radar"
)

type RadarMetrics interface {
	RecordPoll(rows, total int)
	RecordPollFailure()
	RecordEnter(kind radar.RangeKind)
}

type DispatchMetrics interface {
	RecordPromptOpened(action estate.ActionKind)
	RecordPromptResolved(outcome estate.Outcome)
	RecordDispatched(operation string)
}

type DeliveryMetrics interface {
	RecordDeliveryFailure(host string)
}
