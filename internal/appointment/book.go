// Package appointment provides the in-memory mock appointment book backing
// the scheduling tools. It holds synthetic data only; a real calendar
// integration would replace it behind the same surface.
package appointment

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Slot is one offerable appointment time.
type Slot struct {
	Datetime string `json:"datetime"`
	Staff    string `json:"staff"`
}

// Booking is one confirmed mock appointment.
type Booking struct {
	ID           string `json:"appointment_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"customer_phone"`
	Service      string `json:"service_name"`
	Datetime     string `json:"appointment_datetime"`
	Staff        string `json:"staff_name,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Book is the mutex-guarded mock store. Bookings are keyed by customer phone
// number, which is how the voice assistant identifies callers.
type Book struct {
	mu       sync.Mutex
	bookings map[string][]*Booking
	entropy  *rand.Rand
}

func NewBook() *Book {
	return &Book{
		bookings: make(map[string][]*Booking),
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FindSlots returns synthetic availability for a service within a date
// range: three fixed times on the start date with rotating staff.
func (b *Book) FindSlots(service, startDate, endDate string) []Slot {
	_ = service
	_ = endDate
	return []Slot{
		{Datetime: startDate + "T09:00:00", Staff: "Sarah"},
		{Datetime: startDate + "T10:30:00", Staff: "Mike"},
		{Datetime: startDate + "T14:00:00", Staff: "Sarah"},
	}
}

// Add records a new booking and returns it with a generated confirmation ID.
func (b *Book) Add(customerName, phone, service, datetime, staff, notes string) (*Booking, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, fmt.Errorf("customer phone is required")
	}
	if strings.TrimSpace(service) == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if strings.TrimSpace(datetime) == "" {
		return nil, fmt.Errorf("appointment datetime is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	booking := &Booking{
		ID:           "APT-" + ulid.MustNew(ulid.Timestamp(time.Now()), b.entropy).String(),
		CustomerName: customerName,
		Phone:        phone,
		Service:      service,
		Datetime:     datetime,
		Staff:        staff,
		Notes:        notes,
	}
	b.bookings[phone] = append(b.bookings[phone], booking)
	return booking, nil
}

// Cancel removes a booking for the given phone number. When datetime is
// empty and the caller has exactly one booking, that booking is cancelled;
// with multiple bookings the datetime disambiguates.
func (b *Book) Cancel(phone, datetime string) (*Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing := b.bookings[phone]
	if len(existing) == 0 {
		return nil, fmt.Errorf("no appointment found for %s", phone)
	}

	idx := -1
	if datetime == "" {
		if len(existing) > 1 {
			return nil, fmt.Errorf("multiple appointments found for %s, please specify which date and time", phone)
		}
		idx = 0
	} else {
		for i, booking := range existing {
			if booking.Datetime == datetime {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("no appointment found for %s at %s", phone, datetime)
		}
	}

	cancelled := existing[idx]
	b.bookings[phone] = append(existing[:idx], existing[idx+1:]...)
	if len(b.bookings[phone]) == 0 {
		delete(b.bookings, phone)
	}
	return cancelled, nil
}

// Reschedule moves an existing booking to a new datetime.
func (b *Book) Reschedule(phone, currentDatetime, newDatetime string) (*Booking, error) {
	if strings.TrimSpace(newDatetime) == "" {
		return nil, fmt.Errorf("new datetime is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existing := b.bookings[phone]
	if len(existing) == 0 {
		return nil, fmt.Errorf("no appointment found for %s", phone)
	}

	for _, booking := range existing {
		if booking.Datetime == currentDatetime {
			booking.Datetime = newDatetime
			return booking, nil
		}
	}

	return nil, fmt.Errorf("no appointment found for %s at %s", phone, currentDatetime)
}

// Lookup returns all bookings for a phone number.
func (b *Book) Lookup(phone string) []*Booking {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Booking, len(b.bookings[phone]))
	copy(out, b.bookings[phone])
	return out
}
