package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frontdesk-ai/frontdesk/internal/appointment"
	toolcore "github.com/frontdesk-ai/frontdesk/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("find_available_slots", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Book == nil {
			return nil, fmt.Errorf("appointment book is required")
		}
		return &FindSlotsTool{Book: options.Book}, nil
	})
}

// FindSlotsTool searches for open appointment times.
type FindSlotsTool struct {
	Book *appointment.Book
}

func (t *FindSlotsTool) Name() string { return "find_available_slots" }

func (t *FindSlotsTool) Description() string {
	return "Search for available appointment time slots based on service, date range, and optional staff preference."
}

func (t *FindSlotsTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"service_name": map[string]interface{}{
				"type":        "string",
				"description": "The service or treatment name (e.g., 'haircut', 'checkup', 'massage')",
			},
			"start_date": map[string]interface{}{
				"type":        "string",
				"description": "Start of the date range to search (YYYY-MM-DD format)",
			},
			"end_date": map[string]interface{}{
				"type":        "string",
				"description": "End of the date range to search (YYYY-MM-DD format)",
			},
			"staff_name": map[string]interface{}{
				"type":        "string",
				"description": "Optional: preferred staff member or provider name",
			},
			"time_preference": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"morning", "afternoon", "evening", "any"},
				"description": "Optional: preferred time of day",
			},
		},
		"required": []string{"service_name", "start_date", "end_date"},
	}
}

func (t *FindSlotsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	_ = ctx

	var args struct {
		ServiceName string `json:"service_name"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	slots := t.Book.FindSlots(args.ServiceName, args.StartDate, args.EndDate)

	return json.Marshal(map[string]interface{}{
		"success": true,
		"slots":   slots,
		"message": fmt.Sprintf("Found %d available slots for %s", len(slots), args.ServiceName),
	})
}
