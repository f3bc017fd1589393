package events

import "encoding/json"

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// StateLoadedData reports where each resource came from after a reconcile pass
type StateLoadedData struct {
	Phases  []string          `json:"phases"`
	Sources map[string]string `json:"sources"`
}

// EventType returns the event type for StateLoadedData
func (d *StateLoadedData) EventType() EventType {
	return StateLoaded
}

// StateFlushedData is emitted after the auto-persistence daemon writes a snapshot
type StateFlushedData struct {
	Reason   string `json:"reason"`
	Holdings int    `json:"holdings"`
	Alerts   int    `json:"alerts"`
}

// EventType returns the event type for StateFlushedData
func (d *StateFlushedData) EventType() EventType {
	return StateFlushed
}

// PricesTickedData summarizes one simulated price tick
type PricesTickedData struct {
	Tick       uint64  `json:"tick"`
	TotalValue float64 `json:"total_value"`
	TodayGain  float64 `json:"today_gain"`
}

// EventType returns the event type for PricesTickedData
func (d *PricesTickedData) EventType() EventType {
	return PricesTicked
}

// AlertTriggeredData contains data for AlertTriggered events
type AlertTriggeredData struct {
	AlertID   *int64  `json:"alert_id,omitempty"`
	Symbol    string  `json:"symbol"`
	Condition string  `json:"condition"`
	Threshold float64 `json:"threshold"`
	Observed  float64 `json:"observed"`
}

// EventType returns the event type for AlertTriggeredData
func (d *AlertTriggeredData) EventType() EventType {
	return AlertTriggered
}

// MarketStatusChangedData contains data for MarketStatusChanged events
type MarketStatusChangedData struct {
	Open  bool   `json:"open"`
	Label string `json:"label"`
}

// EventType returns the event type for MarketStatusChangedData
func (d *MarketStatusChangedData) EventType() EventType {
	return MarketStatusChanged
}

// NotificationData mirrors a user-facing notification
type NotificationData struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// EventType returns the event type for NotificationData
func (d *NotificationData) EventType() EventType {
	return NotificationCreated
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// convertEventDataToMap converts typed EventData to the map carried by Event
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}

	return result
}

// Decode converts an event's data map back into a typed struct
func (e *Event) Decode(v interface{}) error {
	jsonBytes, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}
