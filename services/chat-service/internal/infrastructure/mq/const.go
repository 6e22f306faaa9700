package mq

const (
	TagTurnCompleted = "turn_completed"
	TagTurnFallback  = "turn_fallback"
)
