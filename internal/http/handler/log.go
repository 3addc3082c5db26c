package handler

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// logWarn emits one structured JSON line for failures that are deliberately
// absorbed by the handler (analytics writes and similar best-effort work).
func logWarn(c *fiber.Ctx, event string, err error) {
	entry := map[string]any{
		"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		"level":      "warn",
		"event":      event,
		"request_id": requestIDFromCtx(c),
		"error":      err.Error(),
	}
	if b, mErr := json.Marshal(entry); mErr == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
