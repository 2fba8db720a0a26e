package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"blast-arena/server/internal/net/proto"
)

// Frames is the documented wire surface: one field per server-to-client
// frame plus the inbound client message union.
type Frames struct {
	ClientMessage proto.ClientMessage  `json:"clientMessage"`
	RoomJoined    proto.RoomJoinedV1   `json:"roomJoined"`
	RoomUpdate    proto.RoomUpdateV1   `json:"roomUpdate"`
	RoomsList     proto.RoomsListV1    `json:"roomsList"`
	GameStarted   proto.GameStartedV1  `json:"gameStarted"`
	State         proto.StateV1        `json:"state"`
	GameEnded     proto.GameEndedV1    `json:"gameEnded"`
	PlayerKilled  proto.PlayerKilledV1 `json:"playerKilled"`
	CameraShake   proto.CameraShakeV1  `json:"cameraShake"`
	Error         proto.ErrorV1        `json:"error"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema := buildSchema()

	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(Frames))
	schema.Title = "Arena Wire Protocol"
	schema.Description = fmt.Sprintf("Websocket frames for protocol version %d", proto.Version)
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
