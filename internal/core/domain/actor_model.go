package domain

import "marstek2mqtt/pkg/marstek"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_DEVICE       = "device"
	ACTOR_ID_POLLER       = "poller"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

// Device actor messages

type GetEnergyStatusRequest struct {
	ActorRequestMixIn
}

type GetEnergyStatusResponse struct {
	ActorResponseMixIn
	Status *marstek.EnergyStatus
}

type GetOperatingModeRequest struct {
	ActorRequestMixIn
}

type GetOperatingModeResponse struct {
	ActorResponseMixIn
	Mode *marstek.OperatingMode
}

type GetBatteryStatusRequest struct {
	ActorRequestMixIn
}

type GetBatteryStatusResponse struct {
	ActorResponseMixIn
	Status *marstek.BatteryStatus
}

type SetOperatingModeRequest struct {
	ActorRequestMixIn
	Mode   string
	Config map[string]any
}

type SetOperatingModeResponse struct {
	ActorResponseMixIn
	Accepted bool
}

// Poller actor messages

type GetSnapshotRequest struct {
	ActorRequestMixIn
}

type GetSnapshotResponse struct {
	ActorResponseMixIn
	Snapshot Snapshot
}

// RefreshSnapshotRequest triggers an on-demand poll cycle. It funnels
// into the same entry point as the scheduled tick; an in-flight cycle
// is never overlapped, the refresh runs right after it.
type RefreshSnapshotRequest struct {
	ActorRequestMixIn
}

type RefreshSnapshotResponse struct {
	ActorResponseMixIn
	Snapshot Snapshot
}

// MQTT actor messages

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors      []GenericSensor
	Selects      []GenericSelect
	InputNumbers []GenericInputNumber
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// Health checks

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
