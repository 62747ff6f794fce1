package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frontdesk-ai/frontdesk/internal/appointment"
	toolcore "github.com/frontdesk-ai/frontdesk/internal/tool"
)

func init() {
	toolcore.RegisterBuiltin("book_appointment", func(options toolcore.BuiltinOptions) (toolcore.Tool, error) {
		if options.Book == nil {
			return nil, fmt.Errorf("appointment book is required")
		}
		return &BookTool{Book: options.Book}, nil
	})
}

// BookTool books an appointment in the mock book.
type BookTool struct {
	Book *appointment.Book
}

func (t *BookTool) Name() string { return "book_appointment" }

func (t *BookTool) Description() string {
	return "Book an appointment at a specific date and time. Always confirm details with customer before calling this."
}

func (t *BookTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"customer_name": map[string]interface{}{
				"type":        "string",
				"description": "Customer's full name (first and last)",
			},
			"customer_phone": map[string]interface{}{
				"type":        "string",
				"description": "Customer's phone number for confirmation and reminders",
			},
			"service_name": map[string]interface{}{
				"type":        "string",
				"description": "The service being booked",
			},
			"appointment_datetime": map[string]interface{}{
				"type":        "string",
				"description": "Date and time of appointment (ISO format: YYYY-MM-DDTHH:MM:SS)",
			},
			"staff_name": map[string]interface{}{
				"type":        "string",
				"description": "Optional: name of preferred staff member",
			},
			"notes": map[string]interface{}{
				"type":        "string",
				"description": "Optional: any special requests or notes",
			},
		},
		"required": []string{"customer_name", "customer_phone", "service_name", "appointment_datetime"},
	}
}

func (t *BookTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	_ = ctx

	var args struct {
		CustomerName string `json:"customer_name"`
		Phone        string `json:"customer_phone"`
		Service      string `json:"service_name"`
		Datetime     string `json:"appointment_datetime"`
		Staff        string `json:"staff_name"`
		Notes        string `json:"notes"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	booking, err := t.Book.Add(args.CustomerName, args.Phone, args.Service, args.Datetime, args.Staff, args.Notes)
	if err != nil {
		return json.Marshal(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	return json.Marshal(map[string]interface{}{
		"success":           true,
		"appointment_id":    booking.ID,
		"message":           fmt.Sprintf("Successfully booked %s for %s on %s", booking.Service, booking.CustomerName, booking.Datetime),
		"confirmation_sent": true,
	})
}
