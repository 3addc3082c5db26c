package service

import (
	"encoding/json"
	"log"
	"time"
)

// logWarn emits one structured JSON log line for best-effort failures
// (notification delivery, analytics writes, token cleanup) that must not
// fail the request that triggered them.
func logWarn(event string, fields map[string]any) {
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": "warn",
		"event": event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
