package proto

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeClientMessageDefaultsVersion(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"move","angle":1.5,"magnitude":0.8}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Ver != Version {
		t.Fatalf("expected version defaulted to %d, got %d", Version, msg.Ver)
	}
	if msg.Type != TypeMove || msg.Angle != 1.5 || msg.Magnitude != 0.8 {
		t.Fatalf("unexpected decode result %+v", msg)
	}
}

func TestDecodeClientMessageRejectsUnknownVersion(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{"ver":99,"type":"move"}`)); err == nil {
		t.Fatalf("expected a version error")
	}
}

func TestDecodeClientMessageRejectsMissingType(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{"angle":1}`)); err == nil {
		t.Fatalf("expected a missing-type error")
	}
}

func TestDecodeClientMessageRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeClientMessage([]byte(`{"type":`)); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestRoomCommandMapsGameplayMessages(t *testing.T) {
	for _, msgType := range []string{TypeMove, TypeShoot, TypeSkill, TypePickup} {
		if _, ok := RoomCommand(ClientMessage{Type: msgType}); !ok {
			t.Fatalf("expected %q to map to a room command", msgType)
		}
	}
	for _, msgType := range []string{TypeCreateRoom, TypeJoinRoom, TypeStartGame, TypeGetRooms, TypeLeave, "bogus"} {
		if _, ok := RoomCommand(ClientMessage{Type: msgType}); ok {
			t.Fatalf("%q is not a room command", msgType)
		}
	}
}

func checkFrame(t *testing.T, payload []byte, err error, wantType string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: encode failed: %v", wantType, err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("%s: invalid JSON: %v", wantType, err)
	}
	if decoded["type"] != wantType {
		t.Fatalf("expected type %q, got %v", wantType, decoded["type"])
	}
	if decoded["ver"] != float64(Version) {
		t.Fatalf("%s: expected ver %d, got %v", wantType, Version, decoded["ver"])
	}
}

func TestEncodedFramesCarryVersionAndType(t *testing.T) {
	payload, err := EncodeRoomJoinedV1("ABC234", "p_1234", true)
	checkFrame(t, payload, err, "roomJoined")

	payload, err = EncodeErrorV1("startGame", "only the host can start the game")
	checkFrame(t, payload, err, "error")

	payload, err = EncodeGameStartedV1("ABC234")
	checkFrame(t, payload, err, "gameStarted")

	payload, err = EncodeRoomUpdateV1("ABC234", nil, "p_1234")
	checkFrame(t, payload, err, "roomUpdate")
}

func TestEncodeRoomsListNeverNull(t *testing.T) {
	payload, err := EncodeRoomsListV1(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(payload), `"rooms":null`) {
		t.Fatalf("empty list should encode as [], got %s", payload)
	}
}

func TestEncodeGameEndedNeverNull(t *testing.T) {
	payload, err := EncodeGameEndedV1("ABC234", nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(payload), `"rankings":null`) {
		t.Fatalf("empty rankings should encode as [], got %s", payload)
	}
}
