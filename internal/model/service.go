package model

// Service is a treatment offered by the clinic. Slot order is the order
// patients see and is preserved everywhere slots are returned.
type Service struct {
	ID    string   `json:"_id" db:"id" bson:"_id"`
	Name  string   `json:"name" db:"name" bson:"name"`
	Slots []string `json:"slots" db:"slots" bson:"slots"`
	Price float64  `json:"price" db:"price" bson:"price"`
}

// HasSlot reports whether slot is one of the service's slot labels.
func (s *Service) HasSlot(slot string) bool {
	for _, candidate := range s.Slots {
		if candidate == slot {
			return true
		}
	}
	return false
}

// ServiceName is the projection returned by the doctor-service listing.
type ServiceName struct {
	Name string `json:"name" db:"name" bson:"name"`
}

// ServiceAvailability is a service with only its open slots for a date.
type ServiceAvailability struct {
	ID    string   `json:"_id"`
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
	Price float64  `json:"price"`
}
